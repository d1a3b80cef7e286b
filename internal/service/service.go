package service

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/config"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/logging"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/internal/model"
	cardmodel "gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/model"
	"gitlab.com/dirk.krummacker/nonprofit-contacts/pkg/vcard"
	"go.uber.org/zap"
)

// maxInt is the largest possible int value
const maxInt = int(^uint(0) >> 1)

// errDuplicateEntry is the MySQL error number for a violated unique key.
const errDuplicateEntry = 1062

// db is a handle to the database.
var db *sqlx.DB

// insert is a prepared statement for creating a contact on the database.
var insert *sqlx.NamedStmt

// upsert is a prepared statement for creating a contact or replacing the one with the same id.
var upsert *sqlx.NamedStmt

// selectWhereId is a prepared statement for selecting contacts with a given id.
var selectWhereId *sqlx.Stmt

// deleteWhereId is a prepared statement for deleting a contact with a given id.
var deleteWhereId *sqlx.Stmt

// logger receives the service's log entries. It discards them until SetLogger is called.
var logger = zap.NewNop()

// codec converts contacts to and from vCards. Imported cards without UID get a random id.
var codec = vcard.Codec{
	NewID: func(time.Time) string { return newImportID() },
}

// validID matches the ids that can be used in a URL.
var validID = regexp.MustCompile(`^[A-Za-z0-9._:@-]{1,64}$`)

// allowedOrderby are the allowed values for the 'orderby' URL parameter.
var allowedOrderby = []string{"id", "type", "name", "displayname", "email", "organization"}

// allowedAscending are the allowed values for the 'ascending' URL parameter.
var allowedAscending = []string{"true", "false"}

// SetLogger replaces the logger of the service.
func SetLogger(l *zap.Logger) {
	logger = l
}

// CreateDatabase initializes and returns a database connection for the given configuration.
func CreateDatabase(cfg config.Config) *sql.DB {
	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logger.Fatal("could not open database", zap.Error(err))
	}
	return sqlDB
}

// SetupDatabaseWrapper initializes the sqlx database wrapper with the specified sql database. It
// then prepares all statements. The database argument can be a real database for production use
// or a mock database within unit tests.
func SetupDatabaseWrapper(sqlDB *sql.DB) {
	var err error
	db = sqlx.NewDb(sqlDB, "mysql")

	// Prepared statements offer a significant speed increase if executed many times.
	insertSQL := fmt.Sprintf(`
		INSERT INTO contacts (%s)
		VALUES (:%s)
	`, model.ColumnList, strings.Join(model.Columns, ", :"))
	insert, err = db.PrepareNamed(insertSQL)
	if err != nil {
		logger.Fatal("could not prepare insert", zap.Error(err))
	}
	updates := make([]string, 0, len(model.Columns)-1)
	for _, column := range model.Columns[1:] {
		updates = append(updates, column+"=VALUES("+column+")")
	}
	upsert, err = db.PrepareNamed(insertSQL + " ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", "))
	if err != nil {
		logger.Fatal("could not prepare upsert", zap.Error(err))
	}
	selectWhereId, err = db.Preparex(`
		SELECT ` + model.ColumnList + ` FROM contacts WHERE id = ?
	`)
	if err != nil {
		logger.Fatal("could not prepare select", zap.Error(err))
	}
	deleteWhereId, err = db.Preparex(`
		DELETE FROM contacts WHERE id = ?
	`)
	if err != nil {
		logger.Fatal("could not prepare delete", zap.Error(err))
	}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints. Requests are
// logged unless requestLogging is false.
func SetupHttpRouter(requestLogging bool) *gin.Engine {
	router := gin.New()
	if requestLogging {
		router.Use(logging.RequestLogger(logger))
	} else {
		logger.Info("Turning off HTTP request logging.")
	}
	router.Use(gin.CustomRecoveryWithWriter(io.Discard, recoverPanic))
	router.GET("/contacts", findContacts)
	router.POST("/contacts", createContact)
	router.GET("/contacts/:id", findContactByID)
	router.PUT("/contacts/:id", updateContactByID)
	router.DELETE("/contacts/:id", deleteContactByID)
	router.GET("/contacts/:id/vcard", downloadContactVCard)
	router.GET("/vcards", exportVCards)
	router.POST("/vcards", importVCards)
	return router
}

// recoverPanic answers requests whose handler panicked, usually because of a database error.
func recoverPanic(c *gin.Context, err any) {
	logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Any("error", err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}

// findContacts responds with a list of contacts as JSON.
//
// The URL parameter 'type' restricts the result to persons or organizations. The URL parameters
// 'name' and 'organization' are interpreted as the beginning of the display name or the
// organization of the contact.
//
// The URL parameter 'limit' specifies how many contacts matching the search criteria are returned.
// The URL parameter 'offset' specifies how many items from the sorted list of results are skipped
// in the beginning. Together with the 'limit' parameter, one can implement search result paging.
//
// The URL parameter 'orderby' specifies the contact property by which the results shall be sorted.
// Valid values are 'id', 'type', 'name', 'displayname', 'email', and 'organization'. If this URL
// parameter is not specified, the contacts will be sorted by id.
//
// If the URL parameter 'ascending' is set to 'false' then the sort order is reversed, starting
// with the 'highest' value. If it is set to 'true', or if this URL parameter is omitted, the
// result starts with the lowest value.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts"
//	> curl "http://localhost:8080/contacts?type=organization"
//	> curl "http://localhost:8080/contacts?name=Ji"
//	> curl "http://localhost:8080/contacts?organization=Acme"
//	> curl "http://localhost:8080/contacts?limit=20&offset=60"
//	> curl "http://localhost:8080/contacts?orderby=displayname&ascending=false"
func findContacts(c *gin.Context) {
	contacts, success := queryContacts(c)
	if !success {
		return
	}
	if len(contacts) == 0 {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	} else {
		c.IndentedJSON(http.StatusOK, contacts)
	}
}

// queryContacts selects the contacts that match the URL parameters of the request. If a parameter
// is invalid then the request is answered with BAD REQUEST and false is returned.
func queryContacts(c *gin.Context) ([]cardmodel.ContactCard, bool) {
	conditions, args, successFilter := parseFilter(c)
	if !successFilter {
		return nil, false
	}
	limit, offset, successLimitAndOffset := parseLimitAndOffset(c)
	if !successLimitAndOffset {
		return nil, false
	}
	orderby, ascending, successOrderbyAndAscending := parseOrderbyAndAscending(c)
	if !successOrderbyAndAscending {
		return nil, false
	}
	query := "SELECT " + model.ColumnList + " FROM contacts"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s %s LIMIT ? OFFSET ?", orderby, ascending)
	args = append(args, limit, offset)

	var rows []model.ContactRow
	if err := db.Select(&rows, query, args...); err != nil {
		logger.Panic("could not select contacts", zap.Error(err))
	}
	return cardsFromRows(rows), true
}

// parseFilter inspects the URL parameters and builds the conditions of the WHERE clause together
// with their arguments.
func parseFilter(c *gin.Context) (conditions []string, args []interface{}, success bool) {
	if cardType := c.Query("type"); cardType != "" {
		if !cardmodel.CardType(cardType).Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid type parameter"})
			return nil, nil, false
		}
		conditions = append(conditions, "type = ?")
		args = append(args, cardType)
	}
	if name := c.Query("name"); name != "" {
		conditions = append(conditions, "displayname LIKE ?")
		args = append(args, name+"%")
	}
	if organization := c.Query("organization"); organization != "" {
		conditions = append(conditions, "organization LIKE ?")
		args = append(args, organization+"%")
	}
	return conditions, args, true
}

// parseLimitAndOffset inspects the URL parameters and determines values for limit and offset of
// the result set.
func parseLimitAndOffset(c *gin.Context) (limit int, offset int, success bool) {
	limit, offset = maxInt, 0
	if limitAsString := c.Query("limit"); limitAsString != "" {
		limitAsInt, errConv := strconv.Atoi(limitAsString)
		if errConv != nil || limitAsInt < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid limit parameter"})
			return 0, 0, false
		}
		limit = limitAsInt
	}
	if offsetAsString := c.Query("offset"); offsetAsString != "" {
		offsetAsInt, errConv := strconv.Atoi(offsetAsString)
		if errConv != nil || offsetAsInt < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid offset parameter"})
			return 0, 0, false
		}
		offset = offsetAsInt
	}
	return limit, offset, true
}

// parseOrderbyAndAscending inspects the URL parameters and determines values for the orderby and
// ascending values of the result set.
func parseOrderbyAndAscending(c *gin.Context) (orderby string, ascending string, success bool) {
	orderby = c.Query("orderby")
	if orderby == "" {
		orderby = "id"
	}
	if !contains(allowedOrderby, orderby) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid orderby parameter"})
		return "", "", false
	}
	ascendingAsString := c.Query("ascending")
	if ascendingAsString == "" {
		ascendingAsString = "true"
	}
	if !contains(allowedAscending, ascendingAsString) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid ascending parameter"})
		return orderby, "", false
	}
	if ascendingAsString == "true" {
		ascending = "ASC"
	} else {
		ascending = "DESC"
	}
	return orderby, ascending, true
}

// contains returns true if a string is present in a slice.
func contains(slice []string, str string) bool {
	for _, v := range slice {
		if v == str {
			return true
		}
	}
	return false
}

// createContact inserts the contact specified in the request's JSON into the database. It responds
// with the full contact data. If the JSON carries no id then a new one is assigned, and if it
// carries no type then the contact is a person.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"displayName": "Erika Mustermann", "email": "erika@example.org", "roles": ["Treasurer"]}'
func createContact(c *gin.Context) {
	var newContact cardmodel.ContactCard
	if err := c.ShouldBindJSON(&newContact); err != nil {
		abortWithBindError(c, err)
		return
	}
	if newContact.ID == "" {
		newContact.ID = uuid.NewString()
	} else if !validID.MatchString(newContact.ID) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return
	}
	if newContact.Type == "" {
		newContact.Type = cardmodel.CardTypePerson
	}
	row, err := model.RowFromCard(newContact)
	if err != nil {
		logger.Panic("could not convert contact", zap.Error(err))
	}
	if _, err := insert.Exec(row); err != nil {
		if isDuplicateEntry(err) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "contact already exists"})
			return
		}
		logger.Panic("could not insert contact", zap.String("id", newContact.ID), zap.Error(err))
	}
	c.IndentedJSON(http.StatusCreated, newContact)
}

// abortWithBindError answers a request whose body could not be bound.
func abortWithBindError(c *gin.Context, err error) {
	var violations validator.ValidationErrors
	if errors.As(err, &violations) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid contact", "details": violations.Error()})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
}

// isDuplicateEntry returns true if the error reports an id that is already taken.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry
}

// findContactByID locates the contact whose ID value matches the id parameter of the request URL,
// then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/3f2c9a4e-0d7b-4c55-9f57-1b0c2a7e8d11
func findContactByID(c *gin.Context) {
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
	c.IndentedJSON(http.StatusOK, contact)
}

// selectContact loads the contact with the given id.
func selectContact(id string) (cardmodel.ContactCard, bool) {
	var rows []model.ContactRow
	if err := selectWhereId.Select(&rows, id); err != nil {
		logger.Panic("could not select contact", zap.String("id", id), zap.Error(err))
	}
	if len(rows) == 0 {
		return cardmodel.ContactCard{}, false
	}
	contact, err := rows[0].Card()
	if err != nil {
		logger.Panic("could not convert contact", zap.String("id", id), zap.Error(err))
	}
	return contact, true
}

// cardsFromRows converts table rows into contact cards.
func cardsFromRows(rows []model.ContactRow) []cardmodel.ContactCard {
	contacts := make([]cardmodel.ContactCard, 0, len(rows))
	for _, row := range rows {
		contact, err := row.Card()
		if err != nil {
			logger.Panic("could not convert contact", zap.String("id", row.Id), zap.Error(err))
		}
		contacts = append(contacts, contact)
	}
	return contacts
}

// updateContactByID updates the contact whose ID value matches the id parameter of the request
// URL, updates the values specified in the JSON (and only those), and finally responds with the
// new version of the contact. An address in the JSON replaces the whole stored address. An update
// that would leave the contact without both name and display name is rejected.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/contacts/c-56 --request "PUT" --include --header "Content-Type: application/json" --data '{"phone": "81970"}'
//	> curl http://localhost:8080/contacts/c-56 --request "PUT" --include --header "Content-Type: application/json" --data '{"w9OnFile": true, "taxId": "12-3456789"}'
func updateContactByID(c *gin.Context) {
	id := c.Param("id")
	if !validID.MatchString(id) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}

	var submitted model.ContactPatch
	if errBind := c.ShouldBindJSON(&submitted); errBind != nil {
		abortWithBindError(c, errBind)
		return
	}
	columns, args, err := submitted.Assignments()
	if err != nil {
		logger.Panic("could not convert contact", zap.String("id", id), zap.Error(err))
	}

	// It only makes sense to continue if we have at least one value to update.
	if len(columns) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "no values to be updated"})
		return
	}

	// A contact must keep at least one of its names.
	if submitted.ClearsName() {
		current, found := selectContact(id)
		if !found {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
			return
		}
		if submitted.LeavesNamesEmpty(current) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "name and display name must not both be empty"})
			return
		}
	}

	sql := "UPDATE contacts SET " + strings.Join(columns, "=?, ") + "=? WHERE id=?"
	args = append(args, id)
	result, errExec := db.Exec(sql, args...)
	if errExec != nil {
		logger.Panic("could not update contact", zap.String("id", id), zap.Error(errExec))
	}
	rowsAffected, errRows := result.RowsAffected()
	if errRows != nil {
		logger.Panic("could not count updated contacts", zap.Error(errRows))
	}
	if rowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}

	// In the HTTP response, return the full contact after the update.
	contact, found := selectContact(id)
	if !found {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// deleteContactByID deletes the contact whose ID value matches the id parameter of the request URL
// from the database.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/c-56 --request "DELETE"
func deleteContactByID(c *gin.Context) {
	id := c.Param("id")
	if !validID.MatchString(id) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return
	}

	result, err := deleteWhereId.Exec(id)
	if err != nil {
		logger.Panic("could not delete contact", zap.String("id", id), zap.Error(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		logger.Panic("could not count deleted contacts", zap.Error(err))
	}
	if rowsAffected == 1 {
		c.IndentedJSON(http.StatusOK, gin.H{"message": "contact deleted"})
	} else {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "contact not found"})
	}
}

// newImportID returns an id for an imported contact that came without a usable one.
func newImportID() string {
	return "imported-" + uuid.NewString()
}
