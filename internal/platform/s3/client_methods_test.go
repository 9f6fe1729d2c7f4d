package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/imamik/planguard/internal/platform/s3/s3test"
)

// testClient creates a Client backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	return clientFor(server.URL), server
}

func clientFor(url string) *Client {
	client := s3.New(s3.Options{
		Region:                     "fsn1",
		BaseEndpoint:               aws.String(url),
		UsePathStyle:               true,
		Credentials:                credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
		HTTPClient: &http.Client{
			Transport: &http.Transport{},
		},
	})
	return &Client{s3: client, region: "fsn1"}
}

// xmlResponse is a helper to write S3-style XML responses.
func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		endpoint  string
		region    string
		accessKey string
		secretKey string
		opts      []Option
	}{
		{
			name:      "hetzner endpoint",
			endpoint:  "https://fsn1.your-objectstorage.com",
			region:    "fsn1",
			accessKey: "test-access-key",
			secretKey: "test-secret-key",
		},
		{
			name:     "empty credentials still succeeds at client creation",
			endpoint: "https://fsn1.your-objectstorage.com",
			region:   "fsn1",
		},
		{
			name:   "default endpoint with path style",
			region: "eu-central-1",
			opts:   []Option{WithPathStyle(true), WithHTTPClient(http.DefaultClient)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(tt.endpoint, tt.region, tt.accessKey, tt.secretKey, tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("expected non-nil client")
			}
			if client.Region() != tt.region {
				t.Errorf("expected region %s, got %s", tt.region, client.Region())
			}
		})
	}
}

func TestCreateBucket(t *testing.T) {
	t.Parallel()

	server := s3test.NewServer()
	defer server.Close()
	client := clientFor(server.URL)
	ctx := context.Background()

	if err := client.CreateBucket(ctx, "policies"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.CreateBucket(ctx, "policies"); err != nil {
		t.Fatalf("expected nil error for already owned bucket, got: %v", err)
	}

	exists, err := client.BucketExists(ctx, "policies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatal("expected bucket to exist")
	}
}

func TestCreateBucket_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 403, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>AccessDenied</Code>
  <Message>Access Denied</Message>
</Error>`)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.CreateBucket(context.Background(), "test-bucket")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to create bucket test-bucket") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestBucketExists_False(t *testing.T) {
	t.Parallel()

	server := s3test.NewServer()
	defer server.Close()

	exists, err := clientFor(server.URL).BucketExists(context.Background(), "nonexistent-bucket")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatal("expected bucket to not exist")
	}
}

func TestBucketExists_OtherError(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 403, "")
	})

	client, server := testClient(t, handler)
	defer server.Close()

	_, err := client.BucketExists(context.Background(), "test-bucket")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to check bucket test-bucket") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestPutObject_SendsBodyAndConditions(t *testing.T) {
	t.Parallel()

	var (
		mu          sync.Mutex
		body        []byte
		ifNoneMatch string
		ifMatch     string
	)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(404)
			return
		}
		mu.Lock()
		body, _ = io.ReadAll(r.Body)
		ifNoneMatch = r.Header.Get("If-None-Match")
		ifMatch = r.Header.Get("If-Match")
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(200)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	data := []byte(`{"kind":"PlanPolicy"}`)
	etag, err := client.PutObject(context.Background(), "test-bucket", "test-key", data, IfAbsent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if etag != `"abc"` {
		t.Errorf("expected etag %q, got %q", `"abc"`, etag)
	}

	mu.Lock()
	if !bytes.Equal(body, data) {
		t.Errorf("expected body %q, got %q", data, body)
	}
	if ifNoneMatch != "*" || ifMatch != "" {
		t.Errorf("unexpected conditions If-None-Match=%q If-Match=%q", ifNoneMatch, ifMatch)
	}
	mu.Unlock()

	if _, err := client.PutObject(context.Background(), "test-bucket", "test-key", data, IfMatch(`"abc"`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if ifMatch != `"abc"` || ifNoneMatch != "" {
		t.Errorf("unexpected conditions If-None-Match=%q If-Match=%q", ifNoneMatch, ifMatch)
	}
}

func TestPutObject_Conditional(t *testing.T) {
	t.Parallel()

	server := s3test.NewServer("test-bucket")
	defer server.Close()
	client := clientFor(server.URL)
	ctx := context.Background()

	first, err := client.PutObject(ctx, "test-bucket", "doc.json", []byte("v1"), IfAbsent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = client.PutObject(ctx, "test-bucket", "doc.json", []byte("v2"), IfAbsent)
	if !IsPreconditionFailed(err) {
		t.Fatalf("expected precondition failure for existing key, got: %v", err)
	}

	second, err := client.PutObject(ctx, "test-bucket", "doc.json", []byte("v2"), IfMatch(first))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second == first {
		t.Fatal("expected etag to change with content")
	}

	_, err = client.PutObject(ctx, "test-bucket", "doc.json", []byte("v3"), IfMatch(first))
	if !IsPreconditionFailed(err) {
		t.Fatalf("expected precondition failure for stale etag, got: %v", err)
	}

	_, err = client.PutObject(ctx, "test-bucket", "missing.json", []byte("v1"), IfMatch(first))
	if !IsNotFound(err) {
		t.Fatalf("expected not found for conditional put on missing key, got: %v", err)
	}

	data, _ := server.Object("test-bucket", "doc.json")
	if string(data) != "v2" {
		t.Errorf("expected stored content v2, got %q", data)
	}
}

func TestPutObject_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 500, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>InternalError</Code>
  <Message>Internal Error</Message>
</Error>`)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	_, err := client.PutObject(context.Background(), "test-bucket", "test-key", []byte("data"), Condition{})
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to put object test-key in bucket test-bucket") {
		t.Errorf("unexpected error message: %v", err)
	}
	if IsPreconditionFailed(err) || IsNotFound(err) {
		t.Errorf("internal error misclassified: %v", err)
	}
}

func TestGetObject(t *testing.T) {
	t.Parallel()

	server := s3test.NewServer("test-bucket")
	defer server.Close()
	client := clientFor(server.URL)
	ctx := context.Background()

	etag, err := client.PutObject(ctx, "test-bucket", "a/b.json", []byte("object content here"), Condition{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	obj, err := client.GetObject(ctx, "test-bucket", "a/b.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(obj.Data) != "object content here" {
		t.Errorf("unexpected content %q", obj.Data)
	}
	if obj.ETag != etag {
		t.Errorf("expected etag %s, got %s", etag, obj.ETag)
	}

	_, err = client.GetObject(ctx, "test-bucket", "missing-key")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got: %v", err)
	}
	if !strings.Contains(err.Error(), "failed to get object missing-key from bucket test-bucket") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestDeleteObject_Conditional(t *testing.T) {
	t.Parallel()

	server := s3test.NewServer("test-bucket")
	defer server.Close()
	client := clientFor(server.URL)
	ctx := context.Background()

	etag, err := client.PutObject(ctx, "test-bucket", "doc.json", []byte("v1"), IfAbsent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = client.DeleteObject(ctx, "test-bucket", "doc.json", IfMatch(`"stale"`))
	if !IsPreconditionFailed(err) {
		t.Fatalf("expected precondition failure, got: %v", err)
	}
	if _, ok := server.Object("test-bucket", "doc.json"); !ok {
		t.Fatal("object must survive a failed conditional delete")
	}

	if err := client.DeleteObject(ctx, "test-bucket", "doc.json", IfMatch(etag)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := server.Object("test-bucket", "doc.json"); ok {
		t.Fatal("expected object to be deleted")
	}

	err = client.DeleteObject(ctx, "test-bucket", "doc.json", IfMatch(etag))
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestDeleteObject_Error(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		xmlResponse(w, 500, `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>InternalError</Code>
  <Message>Internal Error</Message>
</Error>`)
	})

	client, server := testClient(t, handler)
	defer server.Close()

	err := client.DeleteObject(context.Background(), "test-bucket", "test-key", Condition{})
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to delete object test-key from bucket test-bucket") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestListObjects_Paginates(t *testing.T) {
	t.Parallel()

	server := s3test.NewServer("test-bucket")
	defer server.Close()
	server.SetMaxKeys(2)

	for i := 0; i < 5; i++ {
		server.PutObject("test-bucket", fmt.Sprintf("planguard/policies/gke/p%d.json", i), []byte("{}"))
	}
	server.PutObject("test-bucket", "other/file.json", []byte("{}"))

	keys, err := clientFor(server.URL).ListObjects(context.Background(), "test-bucket", "planguard/policies/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 5 {
		t.Fatalf("expected 5 keys across pages, got %d: %v", len(keys), keys)
	}
	for i, key := range keys {
		want := fmt.Sprintf("planguard/policies/gke/p%d.json", i)
		if key != want {
			t.Errorf("key %d: expected %s, got %s", i, want, key)
		}
	}
}

func TestListObjects_Error(t *testing.T) {
	t.Parallel()

	server := s3test.NewServer()
	defer server.Close()

	_, err := clientFor(server.URL).ListObjects(context.Background(), "missing-bucket", "")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !IsNotFound(err) {
		t.Errorf("expected not found, got: %v", err)
	}
}

func TestDeleteBucket(t *testing.T) {
	t.Parallel()

	server := s3test.NewServer("empty", "full")
	defer server.Close()
	server.PutObject("full", "key", []byte("x"))
	client := clientFor(server.URL)

	if err := client.DeleteBucket(context.Background(), "empty"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := client.DeleteBucket(context.Background(), "full")
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if !strings.Contains(err.Error(), "failed to delete bucket full") {
		t.Errorf("unexpected error message: %v", err)
	}
}
