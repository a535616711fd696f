package viewer

import "fmt"

// ImageRendering is the strategy the viewer uses to fetch image pixel data.
type ImageRendering string

// Supported image rendering strategies.
const (
	ImageWadoRS  ImageRendering = "wadors"
	ImageWadoURI ImageRendering = "wadouri"
)

// ImageRenderings lists the supported image rendering strategies.
var ImageRenderings = []ImageRendering{ImageWadoRS, ImageWadoURI}

// Valid checks whether the value is a supported image rendering.
func (r ImageRendering) Valid() bool {
	for _, v := range ImageRenderings {
		if r == v {
			return true
		}
	}
	return false
}

func (r ImageRendering) String() string {
	return string(r)
}

// ParseImageRendering converts `s` into an ImageRendering.
func ParseImageRendering(s string) (ImageRendering, error) {
	if r := ImageRendering(s); r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("unsupported image rendering: %q", s)
}

// ThumbnailRendering is the strategy the viewer uses to produce thumbnails.
type ThumbnailRendering string

// Supported thumbnail rendering strategies.
const (
	ThumbnailWadoRS   ThumbnailRendering = "wadors"
	ThumbnailWadoURI  ThumbnailRendering = "wadouri"
	ThumbnailDefault  ThumbnailRendering = "thumbnail"
	ThumbnailDirect   ThumbnailRendering = "thumbnailDirect"
	ThumbnailRendered ThumbnailRendering = "rendered"
)

// ThumbnailRenderings lists the supported thumbnail rendering strategies.
var ThumbnailRenderings = []ThumbnailRendering{
	ThumbnailWadoRS,
	ThumbnailWadoURI,
	ThumbnailDefault,
	ThumbnailDirect,
	ThumbnailRendered,
}

// Valid checks whether the value is a supported thumbnail rendering.
func (r ThumbnailRendering) Valid() bool {
	for _, v := range ThumbnailRenderings {
		if r == v {
			return true
		}
	}
	return false
}

func (r ThumbnailRendering) String() string {
	return string(r)
}

// ParseThumbnailRendering converts `s` into a ThumbnailRendering.
func ParseThumbnailRendering(s string) (ThumbnailRendering, error) {
	if r := ThumbnailRendering(s); r.Valid() {
		return r, nil
	}
	return "", fmt.Errorf("unsupported thumbnail rendering: %q", s)
}

// RequestCredentials is the credential policy of outbound requests,
// following the `credentials` option of the Fetch API.
type RequestCredentials string

// Permitted credential policies.
const (
	CredentialsOmit       RequestCredentials = "omit"
	CredentialsSameOrigin RequestCredentials = "same-origin"
	CredentialsInclude    RequestCredentials = "include"
)

// RequestCredentialPolicies lists the permitted credential policies.
var RequestCredentialPolicies = []RequestCredentials{
	CredentialsOmit,
	CredentialsSameOrigin,
	CredentialsInclude,
}

// Valid checks whether the value is a permitted credential policy.
func (c RequestCredentials) Valid() bool {
	for _, v := range RequestCredentialPolicies {
		if c == v {
			return true
		}
	}
	return false
}

func (c RequestCredentials) String() string {
	return string(c)
}

// ParseRequestCredentials converts `s` into a RequestCredentials.
func ParseRequestCredentials(s string) (RequestCredentials, error) {
	if c := RequestCredentials(s); c.Valid() {
		return c, nil
	}
	return "", fmt.Errorf("unsupported request credentials: %q", s)
}

// DialogOption is the display policy of the investigational-use dialog.
type DialogOption string

// Known dialog options.
const (
	DialogNever     DialogOption = "never"
	DialogAlways    DialogOption = "always"
	DialogConfigure DialogOption = "configure"
)

// DialogOptions lists the known dialog options.
var DialogOptions = []DialogOption{DialogNever, DialogAlways, DialogConfigure}

// Valid checks whether the value is a known dialog option.
func (o DialogOption) Valid() bool {
	for _, v := range DialogOptions {
		if o == v {
			return true
		}
	}
	return false
}

func (o DialogOption) String() string {
	return string(o)
}

// ParseDialogOption converts `s` into a DialogOption.
func ParseDialogOption(s string) (DialogOption, error) {
	if o := DialogOption(s); o.Valid() {
		return o, nil
	}
	return "", fmt.Errorf("unsupported dialog option: %q", s)
}

func toStrings[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
