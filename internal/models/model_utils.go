package models

import (
	"fmt"
	"strings"
)

// DefaultPublisher owns models addressed by a bare id.
const DefaultPublisher = "google"

// Resource is a parsed model resource name.
type Resource struct {
	// Project and Location are set only for tuned or deployed models
	// addressed as projects/{p}/locations/{l}/...
	Project  string
	Location string
	// Kind is "publishers" for publisher models, otherwise the collection
	// under the project (for example "endpoints").
	Kind      string
	Publisher string
	ID        string
}

// ParseResourceName accepts a bare id ("gemini-1.5-pro"), an alias, a
// publisher path ("publishers/google/models/gemini-1.5-pro") or a project
// path ("projects/p/locations/l/endpoints/123").
func ParseResourceName(name string) (Resource, error) {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return Resource{}, fmt.Errorf("model name is empty")
	}
	if mapped, ok := ResolveAlias(name); ok {
		name = mapped
	}

	segs := strings.Split(name, "/")
	switch {
	case len(segs) == 1:
		return Resource{Kind: "publishers", Publisher: DefaultPublisher, ID: segs[0]}, nil
	case len(segs) == 4 && segs[0] == "publishers" && segs[2] == "models":
		return Resource{Kind: "publishers", Publisher: segs[1], ID: segs[3]}, nil
	case len(segs) == 2 && segs[0] == "models":
		return Resource{Kind: "publishers", Publisher: DefaultPublisher, ID: segs[1]}, nil
	case len(segs) == 6 && segs[0] == "projects" && segs[2] == "locations":
		return Resource{Project: segs[1], Location: segs[3], Kind: segs[4], ID: segs[5]}, nil
	}
	return Resource{}, fmt.Errorf("unrecognised model resource name %q", name)
}

// Path renders the resource relative to projects/{p}/locations/{l}.
func (r Resource) Path() string {
	if r.Kind == "publishers" {
		return "publishers/" + r.Publisher + "/models/" + r.ID
	}
	return r.Kind + "/" + r.ID
}

// String renders the canonical resource name.
func (r Resource) String() string {
	if r.Project != "" {
		return "projects/" + r.Project + "/locations/" + r.Location + "/" + r.Path()
	}
	return r.Path()
}

// IsValidModel reports whether name parses as a model resource.
func IsValidModel(name string) bool {
	_, err := ParseResourceName(name)
	return err == nil
}
