package resolve

import "strings"

// AbsoluteURL prefixes ref with baseURL unless ref already starts with
// baseURL followed by a slash. References to other servers are prefixed
// too; callers that need them untouched should check beforehand.
func AbsoluteURL(baseURL, ref string) string {
	if strings.HasPrefix(ref, baseURL+"/") {
		return ref
	}
	return baseURL + "/" + ref
}

// RelativeURL strips baseURL and the following slash from ref when present.
func RelativeURL(baseURL, ref string) string {
	if rest, ok := strings.CutPrefix(ref, baseURL+"/"); ok {
		return rest
	}
	return ref
}

// ResourceIDToURL turns a resource id into an absolute URL.
//
// A bare id ("123") becomes base/type/id, a relative path ("Patient/123")
// becomes base/path, and anything already starting with base is returned
// as is. A trailing slash on base and a leading slash on id are ignored.
func ResourceIDToURL(id, baseURL, resourceType string) string {
	baseURL = strings.TrimSuffix(baseURL, "/")
	id = strings.TrimPrefix(id, "/")

	switch {
	case !strings.Contains(id, "/"):
		return baseURL + "/" + resourceType + "/" + id
	case !strings.HasPrefix(id, baseURL):
		return baseURL + "/" + id
	default:
		return id
	}
}

// Fragment returns the contained-resource id of a local reference ("#id").
func Fragment(ref string) (string, bool) {
	return strings.CutPrefix(ref, "#")
}
