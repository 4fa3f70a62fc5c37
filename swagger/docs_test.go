package swagger

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestReadDoc(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var spec struct {
		Swagger string                    `json:"swagger"`
		Info    map[string]any            `json:"info"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(doc, &spec))

	assert.Equal(t, "2.0", spec.Swagger)
	assert.Equal(t, SwaggerInfo.Title, spec.Info["title"])
	for _, path := range []string{
		"/api/v1/books",
		"/api/v1/issues",
		"/api/v1/issues/{id}/return",
		"/api/v1/dashboard/due-alerts",
		"/api/v1/ai/summary",
	} {
		assert.Contains(t, spec.Paths, path)
	}
	assert.Contains(t, spec.Paths["/api/v1/issues"], "post")
}
