package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-regions:"

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys must carry a type prefix so different entities never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// WidgetDefinitionUUID returns the stable id of a widget definition name.
func WidgetDefinitionUUID(name string) uuid.UUID {
	return UUID(namespace + "widget_definition:" + strings.ToLower(strings.TrimSpace(name)))
}

// TemplateUUID returns the stable id of a page template slug.
func TemplateUUID(slug string) uuid.UUID {
	return UUID(namespace + "template:" + strings.ToLower(strings.TrimSpace(slug)))
}
