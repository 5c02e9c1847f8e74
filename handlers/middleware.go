package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/harryless17/memoria-backend/models"
	"github.com/harryless17/memoria-backend/permissions"
	"github.com/harryless17/memoria-backend/repository"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey is the key used to store the user object in the request context.
	UserContextKey ContextKey = "user"
	// MemberContextKey is the key used to store the caller's event membership.
	MemberContextKey ContextKey = "member"
)

// AuthMiddleware verifies the bearer token and, if valid, fetches the user and
// adds them to the request context.
func AuthMiddleware(userRepo repository.UserRepository, jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authorization header format must be Bearer {token}")
				return
			}
			tokenString := parts[1]

			claims := &jwt.RegisteredClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return jwtSecret, nil
			})
			if err != nil || !token.Valid {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
				return
			}

			var userID uint
			if _, err := fmt.Sscan(claims.Subject, &userID); err != nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid user ID in token")
				return
			}

			user, err := userRepo.GetByID(userID)
			if err != nil {
				// the user may have been deleted after the token was issued
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "User not found")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user stored by AuthMiddleware.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserContextKey).(*models.User)
	return user
}

// MemberFromContext returns the caller's membership stored by RequireEventMembership.
func MemberFromContext(ctx context.Context) *models.EventMember {
	member, _ := ctx.Value(MemberContextKey).(*models.EventMember)
	return member
}

// EventIDFromRequest parses the event_id chi URL parameter.
func EventIDFromRequest(r *http.Request) (uint, error) {
	idStr := chi.URLParam(r, "event_id")
	eventID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid event ID %q", idStr)
	}
	return uint(eventID), nil
}

// RequireEventMembership checks that the authenticated caller is a member of
// the event named in the URL, that their role grants the given permission key,
// and stores the membership in the context. Guests carry only the view
// permission; resolution keys require the owner or organizer role.
func RequireEventMembership(memberRepo repository.EventMemberRepositoryInterface, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				WriteAPIError(w, http.StatusInternalServerError, "internal", "user not found in context")
				return
			}

			eventID, err := EventIDFromRequest(r)
			if err != nil {
				WriteAPIError(w, http.StatusBadRequest, "invalid_event_id", err.Error())
				return
			}

			member, err := memberRepo.GetByEventAndUser(eventID, user.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					WriteAPIError(w, http.StatusForbidden, "forbidden", "not a member of this event")
					return
				}
				WriteAPIError(w, http.StatusInternalServerError, "internal", "failed to check membership")
				return
			}

			if !permissions.RoleHas(member.Role, permission) {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "role does not grant "+permission)
				return
			}

			ctx := context.WithValue(r.Context(), MemberContextKey, member)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
