package docdb

import (
	"net/url"
	"strings"

	"userstore/internal/domain/entity"
)

// UserKeyPrefix starts the key of every user document.
const UserKeyPrefix = "Users/"

// UserKey returns the document key of the user with the given ID.
func UserKey(userID string) string {
	return UserKeyPrefix + url.PathEscape(userID)
}

// isLoginKey reports whether key addresses a login index entry.
func isLoginKey(key string) bool {
	return strings.HasPrefix(key, entity.LoginKeyPrefix)
}
