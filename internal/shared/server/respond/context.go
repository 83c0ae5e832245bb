package respond

import "github.com/gin-gonic/gin"

// gin context keys shared by handlers, middleware and error logging
const (
	requestIDKey   = "requestId"
	jobIDKey       = "jobId"
	attachmentsKey = "attachments"
)

// SetRequestID records the request's correlation id.
func SetRequestID(c *gin.Context, id string) {
	c.Set(requestIDKey, id)
}

// RequestID returns the id recorded by SetRequestID, or "".
func RequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}

// SetJob tags the request with the job it addresses so logs and error reports carry it.
func SetJob(c *gin.Context, id string) {
	c.Set(jobIDKey, id)
}

// JobID returns the job recorded by SetJob, or "".
func JobID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(jobIDKey)
}

// SetAttachments records how many files the request carried.
func SetAttachments(c *gin.Context, n int) {
	c.Set(attachmentsKey, n)
}

// Attachments returns the count recorded by SetAttachments.
func Attachments(c *gin.Context) int {
	if c == nil {
		return 0
	}
	return c.GetInt(attachmentsKey)
}
