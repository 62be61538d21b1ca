package middleware

import (
	"net/http"

	domainAccount "bloodlink/internal/domain/account"
	"bloodlink/pkg/utils"

	"github.com/gin-gonic/gin"
)

func RoleMiddleware(allowedRoles ...domainAccount.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleKey)
		if !exists {
			utils.ErrorResponse(c, http.StatusForbidden, "Role not found in context")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, allowedRole := range allowedRoles {
			if userRole == string(allowedRole) {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Access denied for role "+userRole)
		c.Abort()
	}
}

func DonorOnly() gin.HandlerFunc {
	return RoleMiddleware(domainAccount.RoleDonor)
}

func HospitalOnly() gin.HandlerFunc {
	return RoleMiddleware(domainAccount.RoleHospital)
}
