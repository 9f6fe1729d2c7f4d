package controller

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/imamik/planguard/api/v1alpha1"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/schema"
	"github.com/imamik/planguard/internal/store/resource"
	"github.com/imamik/planguard/internal/util/naming"
)

// Event reasons.
const (
	EventReasonReconciled    = "Reconciled"
	EventReasonInvalidSpec   = "InvalidSpec"
	EventReasonUnknownFields = "UnknownFields"
	EventReasonSchemaError   = "SchemaError"
)

// Condition reasons.
const (
	ReasonReconciled     = "Reconciled"
	ReasonInvalidSpec    = "InvalidSpec"
	ReasonSchemaError    = "SchemaUnavailable"
	ReasonAllFieldsKnown = "AllFieldsKnown"
	ReasonUnknownFields  = "UnknownFields"
)

// Reconcile result labels.
const (
	resultSuccess = "success"
	resultInvalid = "invalid"
	resultError   = "error"
	resultDeleted = "deleted"
)

// DefaultResolver returns the default decision for a provider kind.
type DefaultResolver func(governance.ProviderKind) governance.Decision

// PlanPolicyReconciler computes the status of PlanPolicy objects.
type PlanPolicyReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	schema        governance.SchemaProvider
	defaults      DefaultResolver
	enableMetrics bool
	schemaRetry   time.Duration
}

// Option is a functional option for configuring the PlanPolicyReconciler.
type Option func(*PlanPolicyReconciler)

// WithSchema sets the plan schema used for unknown fields and decisions.
func WithSchema(p governance.SchemaProvider) Option {
	return func(r *PlanPolicyReconciler) {
		r.schema = p
	}
}

// WithDefaults sets how the default decision of a provider is resolved.
func WithDefaults(resolve DefaultResolver) Option {
	return func(r *PlanPolicyReconciler) {
		r.defaults = resolve
	}
}

// WithMetrics enables or disables Prometheus metrics.
func WithMetrics(enable bool) Option {
	return func(r *PlanPolicyReconciler) {
		r.enableMetrics = enable
	}
}

// WithSchemaRetry sets the requeue delay after the schema provider failed.
func WithSchemaRetry(d time.Duration) Option {
	return func(r *PlanPolicyReconciler) {
		r.schemaRetry = d
	}
}

// NewPlanPolicyReconciler creates a reconciler. Without options it uses the
// builtin schema and DefaultDeny for every provider.
func NewPlanPolicyReconciler(c client.Client, scheme *runtime.Scheme, recorder record.EventRecorder, opts ...Option) *PlanPolicyReconciler {
	r := &PlanPolicyReconciler{
		Client:        c,
		Scheme:        scheme,
		Recorder:      recorder,
		schema:        schema.Builtin(),
		defaults:      func(governance.ProviderKind) governance.Decision { return governance.DefaultDeny },
		enableMetrics: true,
		schemaRetry:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// +kubebuilder:rbac:groups=planguard.k8zner.io,resources=planpolicies,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=planguard.k8zner.io,resources=planpolicies/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch
// +kubebuilder:rbac:groups=coordination.k8s.io,resources=leases,verbs=get;list;watch;create;update;patch;delete

// Reconcile refreshes the status of one PlanPolicy.
func (r *PlanPolicyReconciler) Reconcile(ctx context.Context, req ctrl.Request) (result ctrl.Result, err error) {
	logger := log.FromContext(ctx)
	start := time.Now()
	provider := providerFromObjectName(req.Name)
	outcome := resultSuccess
	defer func() {
		if err != nil {
			outcome = resultError
		}
		r.recordReconcile(provider, outcome, time.Since(start).Seconds())
	}()

	obj := &v1alpha1.PlanPolicy{}
	if err := r.Get(ctx, req.NamespacedName, obj); err != nil {
		if apierrors.IsNotFound(err) {
			if kindLower, name, ok := naming.SplitPolicyObject(req.Name); ok {
				r.forgetPolicy(strings.ToUpper(kindLower), name)
			}
			outcome = resultDeleted
			return ctrl.Result{}, nil
		}
		logger.Error(err, "unable to fetch PlanPolicy")
		return ctrl.Result{}, err
	}

	status := obj.Status.DeepCopy()
	status.ObservedGeneration = obj.Generation

	policy, parseErr := resource.FromObject(obj)
	if parseErr != nil {
		outcome = resultInvalid
		logger.Info("PlanPolicy has an invalid spec", "error", parseErr.Error())
		r.markInvalid(obj, status, parseErr)
		return ctrl.Result{}, r.updateStatus(ctx, obj, status)
	}
	provider = policy.Key.ProviderKind.String()

	if err := r.computeStatus(ctx, policy, status); err != nil {
		logger.Error(err, "failed to read plan schema")
		meta.SetStatusCondition(&status.Conditions, metav1.Condition{
			Type:               v1alpha1.ConditionReady,
			Status:             metav1.ConditionFalse,
			Reason:             ReasonSchemaError,
			Message:            err.Error(),
			ObservedGeneration: obj.Generation,
		})
		r.event(obj, corev1.EventTypeWarning, EventReasonSchemaError, "Failed to read plan schema: %v", err)
		if statusErr := r.updateStatus(ctx, obj, status); statusErr != nil {
			return ctrl.Result{}, statusErr
		}
		return ctrl.Result{RequeueAfter: r.schemaRetry}, nil
	}

	r.recordPolicy(provider, policy.Key.Name, len(status.AllowedFields), len(status.DeniedFields), len(status.UnknownFields))

	if len(status.UnknownFields) > 0 && !equalStrings(status.UnknownFields, obj.Status.UnknownFields) {
		r.event(obj, corev1.EventTypeWarning, EventReasonUnknownFields,
			"Rules reference fields missing from the %s plan schema: %s", provider, strings.Join(status.UnknownFields, ", "))
	}
	if obj.Status.ObservedGeneration != obj.Generation {
		r.event(obj, corev1.EventTypeNormal, EventReasonReconciled,
			"%d rules, %d allowed, %d denied", status.RuleCount, len(status.AllowedFields), len(status.DeniedFields))
	}

	if err := r.updateStatus(ctx, obj, status); err != nil {
		return ctrl.Result{}, err
	}
	logger.V(1).Info("reconciled PlanPolicy",
		"provider", provider,
		"policy", policy.Key.Name,
		"rules", status.RuleCount,
		"unknownFields", len(status.UnknownFields),
	)
	return ctrl.Result{}, nil
}

// computeStatus fills the rule summary, decisions and conditions of status.
func (r *PlanPolicyReconciler) computeStatus(ctx context.Context, p *governance.Policy, status *v1alpha1.PlanPolicyStatus) error {
	schemaFields, err := r.schema.FieldNames(ctx, p.Key.ProviderKind)
	if err != nil {
		return err
	}
	unknown, err := schema.Unknown(ctx, r.schema, p.Key.ProviderKind, p.Rules)
	if err != nil {
		return err
	}

	globalDefault := r.defaults(p.Key.ProviderKind)
	status.GlobalDefault = globalDefault.String()
	status.RuleCount = p.Rules.Len()
	status.UnknownFields = unknown
	status.AllowedFields = nil
	status.DeniedFields = nil
	for _, fd := range governance.EvaluateFields(p.Rules, globalDefault) {
		switch fd.Decision {
		case governance.ExplicitAllow:
			status.AllowedFields = append(status.AllowedFields, fd.Field)
		case governance.ExplicitDeny:
			status.DeniedFields = append(status.DeniedFields, fd.Field)
		}
	}

	fields := unionFields(schemaFields, p.Rules.Fields())
	status.Decisions = make(map[string]string, len(fields))
	for _, fd := range governance.EvaluateFields(p.Rules, globalDefault, fields...) {
		status.Decisions[fd.Field] = fd.Decision.String()
	}

	if len(unknown) == 0 {
		meta.SetStatusCondition(&status.Conditions, metav1.Condition{
			Type:               v1alpha1.ConditionFieldsValid,
			Status:             metav1.ConditionTrue,
			Reason:             ReasonAllFieldsKnown,
			Message:            "All ruled fields exist in the plan schema",
			ObservedGeneration: status.ObservedGeneration,
		})
	} else {
		meta.SetStatusCondition(&status.Conditions, metav1.Condition{
			Type:               v1alpha1.ConditionFieldsValid,
			Status:             metav1.ConditionFalse,
			Reason:             ReasonUnknownFields,
			Message:            fmt.Sprintf("Unknown fields: %s", strings.Join(unknown, ", ")),
			ObservedGeneration: status.ObservedGeneration,
		})
	}
	meta.SetStatusCondition(&status.Conditions, metav1.Condition{
		Type:               v1alpha1.ConditionReady,
		Status:             metav1.ConditionTrue,
		Reason:             ReasonReconciled,
		Message:            fmt.Sprintf("%d rules evaluated under %s", status.RuleCount, globalDefault),
		ObservedGeneration: status.ObservedGeneration,
	})
	return nil
}

// markInvalid clears the computed fields and reports the parse error.
func (r *PlanPolicyReconciler) markInvalid(obj *v1alpha1.PlanPolicy, status *v1alpha1.PlanPolicyStatus, err error) {
	status.RuleCount = len(obj.Spec.Rules)
	status.AllowedFields = nil
	status.DeniedFields = nil
	status.UnknownFields = nil
	status.Decisions = nil
	status.GlobalDefault = ""
	meta.RemoveStatusCondition(&status.Conditions, v1alpha1.ConditionFieldsValid)
	meta.SetStatusCondition(&status.Conditions, metav1.Condition{
		Type:               v1alpha1.ConditionReady,
		Status:             metav1.ConditionFalse,
		Reason:             ReasonInvalidSpec,
		Message:            err.Error(),
		ObservedGeneration: obj.Generation,
	})
	if obj.Status.ObservedGeneration != obj.Generation {
		r.event(obj, corev1.EventTypeWarning, EventReasonInvalidSpec, "Invalid PlanPolicy: %v", err)
	}
}

// updateStatus writes status when it differs from the stored one.
func (r *PlanPolicyReconciler) updateStatus(ctx context.Context, obj *v1alpha1.PlanPolicy, status *v1alpha1.PlanPolicyStatus) error {
	if equality.Semantic.DeepEqual(obj.Status, *status) {
		return nil
	}
	obj.Status = *status
	if err := r.Status().Update(ctx, obj); err != nil {
		if apierrors.IsConflict(err) {
			// The watch delivers the newer object.
			return nil
		}
		return fmt.Errorf("failed to update PlanPolicy status: %w", err)
	}
	return nil
}

func (r *PlanPolicyReconciler) event(obj runtime.Object, eventType, reason, messageFmt string, args ...interface{}) {
	if r.Recorder != nil {
		r.Recorder.Eventf(obj, eventType, reason, messageFmt, args...)
	}
}

// SetupWithManager sets up the controller with the Manager. Status writes
// do not bump the generation, so they do not trigger reconciliation.
func (r *PlanPolicyReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1alpha1.PlanPolicy{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		Named("planpolicy").
		Complete(r)
}

// Helper functions

func providerFromObjectName(name string) string {
	kindLower, _, ok := naming.SplitPolicyObject(name)
	if !ok {
		return "unknown"
	}
	return strings.ToUpper(kindLower)
}

func unionFields(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, f := range list {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
