// SPDX-License-Identifier: MIT

package csrf

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
)

// maxScanBytes bounds how much of a request body is buffered while looking
// for the token field.
const maxScanBytes = 64 << 10

// VerifyToken reports whether the request carries a token matching its
// csrf-token cookie. The header wins; without it the body field is used.
// A consumed body is restored so downstream handlers can read it again.
func VerifyToken(r *http.Request) bool {
	cookie, ok := GetToken(r)
	if !ok {
		return false
	}

	submitted := r.Header.Get(HeaderName)
	if submitted == "" {
		submitted = tokenFromBody(r)
	}
	if submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(submitted)) == 1
}

// tokenFromBody extracts the token from a JSON, urlencoded or multipart body.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	switch mediaType {
	case "application/json", "application/x-www-form-urlencoded", "multipart/form-data":
	default:
		return ""
	}

	buf, complete := peekBody(r)

	switch mediaType {
	case "application/json":
		if !complete {
			return ""
		}
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(buf, &payload); err != nil {
			return ""
		}
		var token string
		if err := json.Unmarshal(payload[BodyField], &token); err != nil {
			return ""
		}
		return token

	case "application/x-www-form-urlencoded":
		if !complete {
			return ""
		}
		values, err := url.ParseQuery(string(buf))
		if err != nil {
			return ""
		}
		return values.Get(BodyField)

	default:
		return tokenFromMultipart(buf, params["boundary"])
	}
}

// tokenFromMultipart scans the buffered prefix of a multipart body. The token
// field must precede any part that pushes the body past maxScanBytes.
func tokenFromMultipart(buf []byte, boundary string) string {
	if boundary == "" {
		return ""
	}
	mr := multipart.NewReader(bytes.NewReader(buf), boundary)
	for {
		part, err := mr.NextPart()
		if err != nil {
			return ""
		}
		if part.FormName() != BodyField || part.FileName() != "" {
			_ = part.Close()
			continue
		}
		v, err := io.ReadAll(io.LimitReader(part, 2*TokenBytes+1))
		_ = part.Close()
		if err != nil && !errors.Is(err, io.EOF) {
			return ""
		}
		return string(v)
	}
}

// peekBody buffers up to maxScanBytes of r.Body and replaces r.Body with a
// reader yielding the full original stream. complete is false when the body
// is longer than the buffer.
func peekBody(r *http.Request) (buf []byte, complete bool) {
	orig := r.Body
	buf, err := io.ReadAll(io.LimitReader(orig, maxScanBytes+1))
	complete = err == nil && len(buf) <= maxScanBytes

	r.Body = &replayBody{
		Reader: io.MultiReader(bytes.NewReader(buf), orig),
		Closer: orig,
	}
	if len(buf) > maxScanBytes {
		buf = buf[:maxScanBytes]
	}
	return buf, complete
}

type replayBody struct {
	io.Reader
	io.Closer
}
