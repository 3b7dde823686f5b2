package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// fail hands err to FailureMiddleware and stops the handler chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// FailureMiddleware is the catch-all for errors handlers did not answer
// themselves: the response becomes 500 with the raw error text as body.
// Nothing is written when the handler already produced a response.
func FailureMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last()
		log.Printf("[ERROR] %s %s: %v", c.Request.Method, c.Request.URL.Path, last.Err)

		if c.Writer.Written() {
			return
		}
		c.String(http.StatusInternalServerError, last.Err.Error())
	}
}
