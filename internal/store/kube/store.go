package kube

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/imamik/planguard/api/v1alpha1"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/store/resource"
	"github.com/imamik/planguard/internal/util/labels"
)

// DefaultNamespace holds PlanPolicy objects unless configured otherwise.
const DefaultNamespace = "planguard-system"

var planPolicyResource = v1alpha1.GroupVersion.WithResource("planpolicies").GroupResource()

// Store implements governance.Store on top of a controller-runtime client.
type Store struct {
	client    client.Client
	namespace string
	managedBy string
	log       logr.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace sets the namespace holding PlanPolicy objects.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.namespace = ns
		}
	}
}

// WithManagedBy sets the managed-by label written on created objects.
func WithManagedBy(manager string) Option {
	return func(s *Store) {
		s.managedBy = manager
	}
}

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// NewStore creates a Kubernetes-backed store. The client's scheme must
// include the v1alpha1 types.
func NewStore(c client.Client, opts ...Option) *Store {
	s := &Store{
		client:    c,
		namespace: DefaultNamespace,
		managedBy: labels.ManagedByCLI,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace returns the namespace the store operates in.
func (s *Store) Namespace() string {
	return s.namespace
}

func (s *Store) objectKey(key governance.PolicyKey) types.NamespacedName {
	return types.NamespacedName{Namespace: s.namespace, Name: resource.ObjectName(key)}
}

func (s *Store) getObject(ctx context.Context, key governance.PolicyKey) (*v1alpha1.PlanPolicy, error) {
	obj := &v1alpha1.PlanPolicy{}
	if err := s.client.Get(ctx, s.objectKey(key), obj); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", governance.ErrPolicyNotFound, key)
		}
		return nil, fmt.Errorf("failed to get PlanPolicy %s: %w", s.objectKey(key), err)
	}
	return obj, nil
}

// Get implements governance.Store.
func (s *Store) Get(ctx context.Context, key governance.PolicyKey) (*governance.Policy, error) {
	obj, err := s.getObject(ctx, key)
	if err != nil {
		return nil, err
	}
	return resource.FromObject(obj)
}

// List implements governance.Store. Objects that do not decode into a valid
// policy are skipped and logged.
func (s *Store) List(ctx context.Context, kind governance.ProviderKind) ([]governance.Policy, error) {
	list := &v1alpha1.PlanPolicyList{}
	if err := s.client.List(ctx, list,
		client.InNamespace(s.namespace),
		client.MatchingLabelsSelector{Selector: labels.SelectorForProvider(kind.String())},
	); err != nil {
		return nil, fmt.Errorf("failed to list PlanPolicies in %s: %w", s.namespace, err)
	}

	policies := make([]governance.Policy, 0, len(list.Items))
	for i := range list.Items {
		p, err := resource.FromObject(&list.Items[i])
		if err != nil {
			s.log.Info("Skipping invalid PlanPolicy", "name", list.Items[i].Name, "error", err.Error())
			continue
		}
		if kind != "" && p.Key.ProviderKind != kind {
			continue
		}
		policies = append(policies, *p)
	}
	governance.SortPolicies(policies)
	return policies, nil
}

// Create implements governance.Store.
func (s *Store) Create(ctx context.Context, policy *governance.Policy) (*governance.Policy, error) {
	obj := resource.ToObject(policy, s.managedBy)
	obj.Namespace = s.namespace
	obj.ResourceVersion = ""
	obj.UID = ""

	if err := s.client.Create(ctx, obj); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return nil, fmt.Errorf("%w: %s", governance.ErrDuplicatePolicyName, policy.Key)
		}
		return nil, fmt.Errorf("failed to create PlanPolicy %s: %w", obj.Name, err)
	}
	s.log.V(1).Info("Created PlanPolicy", "name", obj.Name, "resourceVersion", obj.ResourceVersion)
	return resource.FromObject(obj)
}

// Update implements governance.Store.
func (s *Store) Update(ctx context.Context, policy *governance.Policy) (*governance.Policy, error) {
	obj, err := s.getObject(ctx, policy.Key)
	if err != nil {
		return nil, err
	}
	if obj.ResourceVersion != policy.ResourceVersion {
		return nil, s.staleError(obj, policy)
	}

	resource.ApplyMutable(obj, policy)
	if err := s.client.Update(ctx, obj); err != nil {
		switch {
		case apierrors.IsConflict(err):
			return nil, governance.ConflictError(err)
		case apierrors.IsNotFound(err):
			return nil, fmt.Errorf("%w: %s", governance.ErrPolicyNotFound, policy.Key)
		}
		return nil, fmt.Errorf("failed to update PlanPolicy %s: %w", obj.Name, err)
	}
	s.log.V(1).Info("Updated PlanPolicy", "name", obj.Name, "resourceVersion", obj.ResourceVersion)
	return resource.FromObject(obj)
}

// Delete implements governance.Store.
func (s *Store) Delete(ctx context.Context, policy *governance.Policy) error {
	obj, err := s.getObject(ctx, policy.Key)
	if err != nil {
		return err
	}
	if obj.ResourceVersion != policy.ResourceVersion {
		return s.staleError(obj, policy)
	}

	rv := obj.ResourceVersion
	uid := obj.UID
	preconditions := client.Preconditions{ResourceVersion: &rv}
	if uid != "" {
		preconditions.UID = &uid
	}
	if err := s.client.Delete(ctx, obj, preconditions); err != nil {
		switch {
		case apierrors.IsConflict(err):
			return governance.ConflictError(err)
		case apierrors.IsNotFound(err):
			return fmt.Errorf("%w: %s", governance.ErrPolicyNotFound, policy.Key)
		}
		return fmt.Errorf("failed to delete PlanPolicy %s: %w", obj.Name, err)
	}
	s.log.V(1).Info("Deleted PlanPolicy", "name", obj.Name)
	return nil
}

func (s *Store) staleError(obj *v1alpha1.PlanPolicy, policy *governance.Policy) error {
	return governance.ConflictError(apierrors.NewConflict(planPolicyResource, obj.Name,
		fmt.Errorf("resourceVersion %q is stale, current is %q", policy.ResourceVersion, obj.ResourceVersion)))
}
