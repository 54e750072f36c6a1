package vertex

import (
	"fmt"
	"strings"

	"vertexchat-go/internal/models"
)

const (
	// APIVersion is the REST version segment.
	APIVersion = "v1"
	// MethodGenerateContent is the custom method invoked on the model.
	MethodGenerateContent = "generateContent"
)

// RegionalEndpoint is the default API host for region.
func RegionalEndpoint(region string) string {
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com", region)
}

// GenerateContentURL builds
// {endpoint}/v1/projects/{project}/locations/{region}/{model}:generateContent.
// A model given as a full projects/... path keeps its own project and
// location.
func GenerateContentURL(endpoint, project, region, model string) (string, error) {
	res, err := models.ParseResourceName(model)
	if err != nil {
		return "", err
	}
	if endpoint == "" {
		endpoint = RegionalEndpoint(region)
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if res.Project == "" {
		res.Project = project
		res.Location = region
	}
	return endpoint + "/" + APIVersion + "/" + res.String() + ":" + MethodGenerateContent, nil
}
