package service

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/model"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/vcard"
	"go.uber.org/zap"
)

// maxImportBytes is the largest vCard file that is accepted for an import.
const maxImportBytes = 5 << 20

// downloadContactVCard responds with the contact whose ID value matches the id parameter of the
// request URL as a vCard file.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/c-56/vcard --remote-header-name --remote-name
func downloadContactVCard(c *gin.Context) {
	id := c.Param("id")
	if !validID.MatchString(id) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}
	contact, found := selectContact(id)
	if !found {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}
	attachVCard(c, vcard.Filename(contact), codec.Encode(contact))
}

// exportVCards responds with a single vCard file holding all contacts that match the URL
// parameters. It accepts the same parameters as the listing of contacts. If no contact matches
// then the file is empty.
//
// REST API calls:
//
//	> curl "http://localhost:8080/vcards" --output contacts.vcf
//	> curl "http://localhost:8080/vcards?type=person&orderby=displayname" --output people.vcf
func exportVCards(c *gin.Context) {
	contacts, success := queryContacts(c)
	if !success {
		return
	}
	attachVCard(c, vcard.FilenameAll, codec.EncodeMultiple(contacts))
}

// attachVCard sends vCard text as a file download.
func attachVCard(c *gin.Context, filename string, text string) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, vcard.MediaType, []byte(text))
}

// importVCards stores every contact found in the vCard file of the request. The file is either
// the raw request body or the form field 'file' of a multipart request. Contacts whose UID is
// already stored replace the stored contact. Contacts without a usable UID get a new id. If any
// contact does not pass the same validation as a created contact then nothing is stored. The
// response lists the stored contacts.
//
// REST API calls:
//
//	> curl http://localhost:8080/vcards --request "POST" --header "Content-Type: text/vcard" --data-binary @contacts.vcf
//	> curl http://localhost:8080/vcards --request "POST" --form "file=@contacts.vcf"
func importVCards(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	text, success := readImport(c)
	if !success {
		return
	}

	contacts := codec.SplitRecords(text)
	if len(contacts) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "no vCard records found"})
		return
	}
	for i := range contacts {
		if !validID.MatchString(contacts[i].ID) {
			contacts[i].ID = newImportID()
		}
		if err := binding.Validator.ValidateStruct(&contacts[i]); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message": "invalid contact",
				"record":  i + 1,
				"details": err.Error(),
			})
			return
		}
	}
	for i := range contacts {
		row, err := model.RowFromCard(contacts[i])
		if err != nil {
			logger.Panic("could not convert contact", zap.Error(err))
		}
		if _, err := upsert.Exec(row); err != nil {
			logger.Panic("could not import contact", zap.String("id", contacts[i].ID), zap.Error(err))
		}
	}
	logger.Info("contacts imported", zap.Int("count", len(contacts)))
	c.IndentedJSON(http.StatusOK, gin.H{
		"message":  "contacts imported",
		"imported": len(contacts),
		"contacts": contacts,
	})
}

// readImport returns the vCard text of an import request. If the request does not carry a
// readable vCard file then it is answered and false is returned.
func readImport(c *gin.Context) (string, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		data, err := c.GetRawData()
		if err != nil {
			abortWithReadError(c, err)
			return "", false
		}
		return string(data), true
	}

	header, err := c.FormFile("file")
	if err != nil {
		abortWithReadError(c, err)
		return "", false
	}
	if !vcard.IsVCardFile(header.Filename) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "unsupported file type"})
		return "", false
	}
	file, err := header.Open()
	if err != nil {
		abortWithReadError(c, err)
		return "", false
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithReadError(c, err)
		return "", false
	}
	return string(data), true
}

// abortWithReadError answers a request whose body could not be read.
func abortWithReadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "file too large"})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "missing vCard file"})
}
