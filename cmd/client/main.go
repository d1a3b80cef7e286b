package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
)

// Usage example on the command line:
// > go run main.go -base=http://localhost:8080
func main() {
	basePtr := flag.String("base", "http://localhost:8080", "the base URL of the contacts service")
	flag.Parse()
	base := *basePtr

	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET     VCARD    DELETE ")
	fmt.Println("-------------------------------------------------------------")
	sizes := []int{1000, 5000, 10000, 50000, 100000}
	postBody := []byte(`{
		"displayName": "Marcus Antonius",
		"phone": "+39 999 777 555",
		"email": "marcus@example.org",
		"roles": ["Board Member"],
		"address": {"street": "Via Sacra 1", "city": "Roma", "zipCode": "00186", "country": "Italy"}
	}`)
	putBody := []byte(`{"title": "Consul", "w9OnFile": true}`)
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		ids := make([]string, 0, loops)
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				id, d := sendPostRequest(base, bytes.NewReader(postBody))
				ids = append(ids, id)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// PUT requests
			f := func(id string) int64 {
				return sendRequestForID(base, "/contacts/"+id, http.MethodPut, bytes.NewReader(putBody))
			}
			callInLoop(ids, f)
		}
		{
			// GET requests
			f := func(id string) int64 {
				return sendRequestForID(base, "/contacts/"+id, http.MethodGet, nil)
			}
			callInLoop(ids, f)
		}
		{
			// GET requests for vCards
			f := func(id string) int64 {
				return sendRequestForID(base, "/contacts/"+id+"/vcard", http.MethodGet, nil)
			}
			callInLoop(ids, f)
		}
		{
			// DELETE requests
			f := func(id string) int64 {
				return sendRequestForID(base, "/contacts/"+id, http.MethodDelete, nil)
			}
			callInLoop(ids, f)
		}
		fmt.Println()
	}
}

// callInLoop calls f for all ids in random order and prints the average duration in
// microseconds.
func callInLoop(ids []string, f func(id string) int64) {
	shuffled := append([]string(nil), ids...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

func sendPostRequest(base string, bodyReader io.Reader) (string, int64) {
	resBody, duration := sendRequest(http.MethodPost, base+"/contacts", bodyReader)
	var contact model.ContactCard
	err := json.Unmarshal(resBody, &contact)
	if err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return contact.ID, duration
}

func sendRequestForID(base string, path string, method string, bodyReader io.Reader) int64 {
	_, duration := sendRequest(method, base+path, bodyReader)
	return duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	return resBody, after - before
}
