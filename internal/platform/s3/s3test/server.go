// Package s3test provides an in-memory server speaking the subset of the S3
// REST protocol used by the s3 client: bucket head/create/delete, object
// get/put/delete with If-Match and If-None-Match, and paginated
// ListObjectsV2. Requests must use path-style addressing.
package s3test

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Server is an in-memory S3 endpoint.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	buckets map[string]map[string]object
	maxKeys int
}

type object struct {
	data     []byte
	etag     string
	modified time.Time
}

// NewServer starts a server with the given buckets already created.
// Callers must Close it.
func NewServer(buckets ...string) *Server {
	s := &Server{
		buckets: make(map[string]map[string]object),
		maxKeys: 1000,
	}
	for _, b := range buckets {
		s.buckets[b] = make(map[string]object)
	}
	s.Server = httptest.NewServer(s)
	return s
}

// SetMaxKeys caps the size of list pages.
func (s *Server) SetMaxKeys(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxKeys = n
}

// Object returns the stored content of a key.
func (s *Server) Object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj.data...), true
}

// PutObject stores data under key, bypassing any condition.
func (s *Server) PutObject(bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string]object)
	}
	s.buckets[bucket][key] = newObject(data)
}

// Keys returns the sorted keys of a bucket.
func (s *Server) Keys(bucket string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.buckets[bucket], "")
}

func newObject(data []byte) object {
	sum := md5.Sum(data)
	return object{
		data:     append([]byte(nil), data...),
		etag:     `"` + hex.EncodeToString(sum[:]) + `"`,
		modified: time.Now().UTC(),
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if bucket == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "bucket name required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if key == "" {
		s.serveBucket(w, r, bucket)
		return
	}

	objects, ok := s.buckets[bucket]
	if !ok {
		writeError(w, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist.")
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		obj, ok := objects[key]
		if !ok {
			writeError(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
			return
		}
		if m := r.Header.Get("If-Match"); m != "" && m != obj.etag {
			writeError(w, http.StatusPreconditionFailed, "PreconditionFailed", "At least one of the pre-conditions you specified did not hold")
			return
		}
		w.Header().Set("ETag", obj.etag)
		w.Header().Set("Content-Length", strconv.Itoa(len(obj.data)))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Last-Modified", obj.modified.Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(obj.data)
		}

	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "IncompleteBody", err.Error())
			return
		}
		current, exists := objects[key]
		if r.Header.Get("If-None-Match") == "*" && exists {
			writeError(w, http.StatusPreconditionFailed, "PreconditionFailed", "At least one of the pre-conditions you specified did not hold")
			return
		}
		if m := r.Header.Get("If-Match"); m != "" {
			if !exists {
				writeError(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
				return
			}
			if m != current.etag {
				writeError(w, http.StatusPreconditionFailed, "PreconditionFailed", "At least one of the pre-conditions you specified did not hold")
				return
			}
		}
		obj := newObject(data)
		objects[key] = obj
		w.Header().Set("ETag", obj.etag)
		w.WriteHeader(http.StatusOK)

	case http.MethodDelete:
		current, exists := objects[key]
		if m := r.Header.Get("If-Match"); m != "" {
			if !exists {
				writeError(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
				return
			}
			if m != current.etag {
				writeError(w, http.StatusPreconditionFailed, "PreconditionFailed", "At least one of the pre-conditions you specified did not hold")
				return
			}
		}
		delete(objects, key)
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "The specified method is not allowed against this resource.")
	}
}

func (s *Server) serveBucket(w http.ResponseWriter, r *http.Request, bucket string) {
	objects, exists := s.buckets[bucket]

	switch r.Method {
	case http.MethodHead:
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)

	case http.MethodPut:
		if exists {
			writeError(w, http.StatusConflict, "BucketAlreadyOwnedByYou", "Your previous request to create the named bucket succeeded and you already own it.")
			return
		}
		s.buckets[bucket] = make(map[string]object)
		w.Header().Set("Location", "/"+bucket)
		w.WriteHeader(http.StatusOK)

	case http.MethodDelete:
		if !exists {
			writeError(w, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist.")
			return
		}
		if len(objects) > 0 {
			writeError(w, http.StatusConflict, "BucketNotEmpty", "The bucket you tried to delete is not empty")
			return
		}
		delete(s.buckets, bucket)
		w.WriteHeader(http.StatusNoContent)

	case http.MethodGet:
		if !exists {
			writeError(w, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist.")
			return
		}
		if r.URL.Query().Get("list-type") != "2" {
			writeError(w, http.StatusNotImplemented, "NotImplemented", "only ListObjectsV2 is supported")
			return
		}
		s.listObjects(w, r, bucket, objects)

	default:
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "The specified method is not allowed against this resource.")
	}
}

type listBucketResult struct {
	XMLName               xml.Name       `xml:"http://s3.amazonaws.com/doc/2006-03-01/ ListBucketResult"`
	Name                  string         `xml:"Name"`
	Prefix                string         `xml:"Prefix"`
	KeyCount              int            `xml:"KeyCount"`
	MaxKeys               int            `xml:"MaxKeys"`
	IsTruncated           bool           `xml:"IsTruncated"`
	ContinuationToken     string         `xml:"ContinuationToken,omitempty"`
	NextContinuationToken string         `xml:"NextContinuationToken,omitempty"`
	Contents              []listContents `xml:"Contents"`
}

type listContents struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int    `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request, bucket string, objects map[string]object) {
	q := r.URL.Query()
	prefix := q.Get("prefix")
	token := q.Get("continuation-token")
	after := q.Get("start-after")
	if token != "" {
		after = token
	}

	maxKeys := s.maxKeys
	if v, err := strconv.Atoi(q.Get("max-keys")); err == nil && v > 0 && v < maxKeys {
		maxKeys = v
	}

	result := listBucketResult{
		Name:              bucket,
		Prefix:            prefix,
		MaxKeys:           maxKeys,
		ContinuationToken: token,
	}
	for _, key := range sortedKeys(objects, prefix) {
		if after != "" && key <= after {
			continue
		}
		if len(result.Contents) == maxKeys {
			result.IsTruncated = true
			result.NextContinuationToken = result.Contents[len(result.Contents)-1].Key
			break
		}
		obj := objects[key]
		result.Contents = append(result.Contents, listContents{
			Key:          key,
			LastModified: obj.modified.Format(time.RFC3339),
			ETag:         obj.etag,
			Size:         len(obj.data),
			StorageClass: "STANDARD",
		})
	}
	result.KeyCount = len(result.Contents)

	body, err := xml.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "InternalError", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}

func sortedKeys(objects map[string]object, prefix string) []string {
	keys := make([]string, 0, len(objects))
	for key := range objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>%s</Code>
  <Message>%s</Message>
</Error>`, code, message)
}
