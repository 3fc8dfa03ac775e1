package middleware

import (
	"juba-homez/internal/api/respond"
	"juba-homez/internal/authz"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Require allows the request when the caller's role may perform action.
func Require(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authz.Check(Identity(c), action, nil).Err(); err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireResource checks the role first, then loads the resource named by the
// path parameter and checks ownership. A missing resource yields 404.
func RequireResource(action authz.Action, load authz.Loader, param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := Identity(c)
		rule, _ := authz.RuleFor(action)
		if err := authz.Authorize(identity, rule.Roles, nil).Err(); err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		id, err := strconv.ParseUint(c.Param(param), 10, 32)
		if err != nil || id == 0 {
			c.Error(respond.BadRequest("Invalid " + param))
			c.Abort()
			return
		}

		res, err := load(c.Request.Context(), uint(id))
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		if err := authz.Check(identity, action, res).Err(); err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
