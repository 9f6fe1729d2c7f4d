package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"

	"github.com/imamik/planguard/api/v1alpha1"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/platform/s3"
	"github.com/imamik/planguard/internal/store/resource"
	"github.com/imamik/planguard/internal/util/async"
	"github.com/imamik/planguard/internal/util/labels"
	"github.com/imamik/planguard/internal/util/naming"
)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "planguard"

// listConcurrency bounds the documents List reads at once.
const listConcurrency = 8

// ObjectClient is the subset of the s3 client the store needs.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, bucket string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucket, key string) (*s3.Object, error)
	PutObject(ctx context.Context, bucket, key string, data []byte, cond s3.Condition) (string, error)
	DeleteObject(ctx context.Context, bucket, key string, cond s3.Condition) error
}

// Store implements governance.Store on an S3 bucket.
type Store struct {
	client    ObjectClient
	bucket    string
	prefix    string
	managedBy string
	log       logr.Logger
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithManagedBy sets the managed-by label written into new documents.
func WithManagedBy(manager string) Option {
	return func(s *Store) {
		s.managedBy = manager
	}
}

// NewStore creates a store on bucket.
func NewStore(client ObjectClient, bucket string, opts ...Option) *Store {
	s := &Store{
		client:    client,
		bucket:    bucket,
		prefix:    DefaultPrefix,
		managedBy: labels.ManagedByCLI,
		log:       logr.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	s.log.Info("Creating policy bucket", "bucket", s.bucket)
	return s.client.CreateBucket(ctx, s.bucket)
}

func (s *Store) objectKey(key governance.PolicyKey) string {
	return naming.PolicyObjectKey(s.prefix, key.ProviderKind.Lower(), key.Name)
}

func (s *Store) getDocument(ctx context.Context, key governance.PolicyKey) (*v1alpha1.PlanPolicy, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(key))
	if err != nil {
		if s3.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", governance.ErrPolicyNotFound, key)
		}
		return nil, err
	}

	doc := &v1alpha1.PlanPolicy{}
	if err := json.Unmarshal(obj.Data, doc); err != nil {
		return nil, fmt.Errorf("failed to decode policy document %s: %w", s.objectKey(key), err)
	}
	doc.ResourceVersion = obj.ETag
	return doc, nil
}

func (s *Store) putDocument(ctx context.Context, key governance.PolicyKey, doc *v1alpha1.PlanPolicy, cond s3.Condition) (string, error) {
	stored := doc.DeepCopy()
	// The ETag is the resource version; it is never part of the body.
	stored.ResourceVersion = ""
	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to encode policy document %s: %w", doc.Name, err)
	}
	return s.client.PutObject(ctx, s.bucket, s.objectKey(key), data, cond)
}

// Get implements governance.Store.
func (s *Store) Get(ctx context.Context, key governance.PolicyKey) (*governance.Policy, error) {
	doc, err := s.getDocument(ctx, key)
	if err != nil {
		return nil, err
	}
	return resource.FromObject(doc)
}

// List implements governance.Store. Documents removed between listing and
// reading are skipped.
func (s *Store) List(ctx context.Context, kind governance.ProviderKind) ([]governance.Policy, error) {
	var kindLower string
	if kind != "" {
		kindLower = kind.Lower()
	}
	keys, err := s.client.ListObjects(ctx, s.bucket, naming.PolicyPrefix(s.prefix, kindLower))
	if err != nil {
		return nil, err
	}

	var policyKeys []governance.PolicyKey
	for _, objectKey := range keys {
		k, name, ok := naming.SplitPolicyObjectKey(s.prefix, objectKey)
		if !ok {
			s.log.V(1).Info("Skipping foreign object", "key", objectKey)
			continue
		}
		pk, err := governance.ParseProviderKind(k)
		if err != nil {
			s.log.V(1).Info("Skipping object with unknown provider kind", "key", objectKey)
			continue
		}
		policyKeys = append(policyKeys, governance.PolicyKey{ProviderKind: pk, Name: name})
	}

	found := make([]*governance.Policy, len(policyKeys))
	tasks := make([]async.Task, 0, len(policyKeys))
	for i, key := range policyKeys {
		tasks = append(tasks, async.Task{Name: key.String(), Func: func(ctx context.Context) error {
			p, err := s.Get(ctx, key)
			if governance.IsNotFound(err) {
				return nil
			}
			found[i] = p
			return err
		}})
	}
	if err := async.RunParallel(ctx, tasks, listConcurrency); err != nil {
		return nil, err
	}

	policies := make([]governance.Policy, 0, len(found))
	for _, p := range found {
		if p != nil {
			policies = append(policies, *p)
		}
	}
	governance.SortPolicies(policies)
	return policies, nil
}

// Create implements governance.Store.
func (s *Store) Create(ctx context.Context, policy *governance.Policy) (*governance.Policy, error) {
	doc := resource.ToObject(policy, s.managedBy)
	doc.UID = types.UID(uuid.NewString())
	doc.CreationTimestamp = metav1.NewTime(s.now().UTC().Truncate(time.Second))
	doc.Generation = 1

	etag, err := s.putDocument(ctx, policy.Key, doc, s3.IfAbsent)
	if err != nil {
		if s3.IsPreconditionFailed(err) {
			return nil, fmt.Errorf("%w: %s", governance.ErrDuplicatePolicyName, policy.Key)
		}
		if s3.IsConditionalConflict(err) {
			return nil, governance.ConflictError(err)
		}
		return nil, err
	}
	doc.ResourceVersion = etag
	s.log.V(1).Info("Created policy document", "key", s.objectKey(policy.Key), "etag", etag)
	return resource.FromObject(doc)
}

// Update implements governance.Store.
func (s *Store) Update(ctx context.Context, policy *governance.Policy) (*governance.Policy, error) {
	doc, err := s.getDocument(ctx, policy.Key)
	if err != nil {
		return nil, err
	}
	if doc.ResourceVersion != policy.ResourceVersion {
		return nil, governance.ConflictError(fmt.Errorf("etag %s is stale, current is %s", policy.ResourceVersion, doc.ResourceVersion))
	}

	resource.ApplyMutable(doc, policy)
	// Bumping the generation keeps ETags unique across writes with equal content.
	doc.Generation++

	etag, err := s.putDocument(ctx, policy.Key, doc, s3.IfMatch(policy.ResourceVersion))
	if err != nil {
		return nil, s.classifyWriteError(policy.Key, err)
	}
	doc.ResourceVersion = etag
	s.log.V(1).Info("Updated policy document", "key", s.objectKey(policy.Key), "etag", etag)
	return resource.FromObject(doc)
}

// Delete implements governance.Store.
func (s *Store) Delete(ctx context.Context, policy *governance.Policy) error {
	doc, err := s.getDocument(ctx, policy.Key)
	if err != nil {
		return err
	}
	if doc.ResourceVersion != policy.ResourceVersion {
		return governance.ConflictError(fmt.Errorf("etag %s is stale, current is %s", policy.ResourceVersion, doc.ResourceVersion))
	}

	if err := s.client.DeleteObject(ctx, s.bucket, s.objectKey(policy.Key), s3.IfMatch(policy.ResourceVersion)); err != nil {
		return s.classifyWriteError(policy.Key, err)
	}
	s.log.V(1).Info("Deleted policy document", "key", s.objectKey(policy.Key))
	return nil
}

func (s *Store) classifyWriteError(key governance.PolicyKey, err error) error {
	switch {
	case s3.IsNotFound(err):
		return fmt.Errorf("%w: %s", governance.ErrPolicyNotFound, key)
	case s3.IsPreconditionFailed(err), s3.IsConditionalConflict(err):
		return governance.ConflictError(err)
	}
	return err
}
