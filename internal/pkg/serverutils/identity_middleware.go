// FILE: internal/pkg/serverutils/identity_middleware.go
package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"knowledge-copilot-be/internal/entity"
)

const (
	localRequesterId = "requester_id"
	localRoleNames   = "role_names"
	localAttributes  = "attributes"
)

// IdentityMiddleware verifies the bearer token and extracts the requester
// identity (subject, role names, ABAC attributes) into request locals. The
// identity never comes from the request body.
func IdentityMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})

	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	// Roles arrive as a JSON array claim. Absent or malformed roles mean an
	// empty role set, which downstream treats as "sees nothing", not an error.
	var roleNames []string
	if rawRoles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range rawRoles {
			if name, ok := r.(string); ok && name != "" {
				roleNames = append(roleNames, name)
			}
		}
	}

	attributes := map[string]interface{}{}
	if rawAttrs, ok := claims["attributes"].(map[string]interface{}); ok {
		attributes = rawAttrs
	}

	ctx.Locals(localRequesterId, sub)
	ctx.Locals(localRoleNames, roleNames)
	ctx.Locals(localAttributes, attributes)
	return ctx.Next()
}

// RequesterFromCtx rebuilds the verified requester from locals. Returns nil
// when the identity middleware did not run.
func RequesterFromCtx(ctx *fiber.Ctx) *entity.Requester {
	id, _ := ctx.Locals(localRequesterId).(string)
	if id == "" {
		return nil
	}
	roleNames, _ := ctx.Locals(localRoleNames).([]string)
	attributes, _ := ctx.Locals(localAttributes).(map[string]interface{})
	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	return &entity.Requester{
		Id:         id,
		RoleNames:  roleNames,
		Attributes: attributes,
	}
}
