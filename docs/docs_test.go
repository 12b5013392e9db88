package docs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type swaggerDoc struct {
	BasePath    string                                `json:"basePath"`
	Paths       map[string]map[string]json.RawMessage `json:"paths"`
	Definitions map[string]json.RawMessage            `json:"definitions"`
}

var routeAnnotation = regexp.MustCompile(`@Router\s+(\S+)\s+\[(\w+)\]`)

func annotatedRoutes(t *testing.T) map[string][]string {
	t.Helper()
	files, err := filepath.Glob("../internal/api/handler/*.go")
	require.NoError(t, err)
	files = append(files, "../internal/infrastructure/http/handlers/health.go")

	routes := map[string][]string{}
	for _, f := range files {
		if strings.HasSuffix(f, "_test.go") {
			continue
		}
		src, err := os.ReadFile(f)
		require.NoError(t, err)
		for _, m := range routeAnnotation.FindAllStringSubmatch(string(src), -1) {
			routes[m[1]] = append(routes[m[1]], m[2])
		}
	}
	return routes
}

func TestRegisteredDocCoversEveryRoute(t *testing.T) {
	raw := SwaggerInfo.ReadDoc()

	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "/", doc.BasePath)

	routes := annotatedRoutes(t)
	require.NotEmpty(t, routes)
	for path, methods := range routes {
		for _, method := range methods {
			assert.Contains(t, doc.Paths[path], method, "%s %s missing from the document", method, path)
		}
	}
	assert.Contains(t, doc.Definitions, "handler.ErrorResponse")
	assert.Contains(t, doc.Definitions, "ports.UploadResult")
}

func TestSwaggerJSONMatchesRegisteredDoc(t *testing.T) {
	raw := SwaggerInfo.ReadDoc()
	var registered swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &registered))

	file, err := os.ReadFile("swagger.json")
	require.NoError(t, err)
	var written swaggerDoc
	require.NoError(t, json.Unmarshal(file, &written))

	assert.Equal(t, len(registered.Paths), len(written.Paths))
	assert.Equal(t, len(registered.Definitions), len(written.Definitions))
	for path := range registered.Paths {
		assert.Contains(t, written.Paths, path)
	}
}
