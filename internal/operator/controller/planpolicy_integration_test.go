//go:build integration

package controller

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/types"

	"github.com/imamik/planguard/api/v1alpha1"
	"github.com/imamik/planguard/internal/admin"
	"github.com/imamik/planguard/internal/bootstrap"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/store/kube"
	"github.com/imamik/planguard/internal/store/resource"
)

const (
	timeout  = 30 * time.Second
	interval = 250 * time.Millisecond
)

func objectKey(key governance.PolicyKey) types.NamespacedName {
	return types.NamespacedName{Namespace: kube.DefaultNamespace, Name: resource.ObjectName(key)}
}

var _ = Describe("PlanPolicy controller", func() {
	var svc *admin.Service

	BeforeEach(func() {
		svc = admin.NewService(kube.NewStore(k8sClient), admin.WithMetrics(false), admin.WithStrictFields(true))
	})

	It("seeds the built-in policies on start", func() {
		for _, kind := range governance.KnownProviderKinds() {
			key := bootstrap.BuiltinKey(kind)
			Eventually(func(g Gomega) {
				p, err := svc.Get(ctx, key)
				g.Expect(err).NotTo(HaveOccurred())
				g.Expect(p.ReadOnly).To(BeTrue())
			}, timeout, interval).Should(Succeed())
		}
	})

	It("rejects changes to built-in policies", func() {
		key := bootstrap.BuiltinKey(governance.ProviderGKE)
		Eventually(func() error {
			_, err := svc.Get(ctx, key)
			return err
		}, timeout, interval).Should(Succeed())

		err := svc.Delete(ctx, key)
		Expect(err).To(MatchError(governance.ErrPolicyReadOnly))

		d, err := svc.Evaluate(ctx, key, "authorizedMasterNetworks", governance.DefaultAllow)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(governance.ExplicitDeny))
	})

	It("computes the status of a new policy", func() {
		key := governance.PolicyKey{ProviderKind: governance.ProviderEKS, Name: "status-policy"}
		_, err := svc.Create(ctx, key.ProviderKind, key.Name, "status test", "")
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.ToggleDeny(ctx, key, "vpcId", true)
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.ToggleAllow(ctx, key, "instanceType", true)
		Expect(err).NotTo(HaveOccurred())

		Eventually(func(g Gomega) {
			obj := &v1alpha1.PlanPolicy{}
			g.Expect(k8sClient.Get(ctx, objectKey(key), obj)).To(Succeed())
			g.Expect(obj.Status.ObservedGeneration).To(Equal(obj.Generation))
			g.Expect(obj.Status.RuleCount).To(Equal(2))
			g.Expect(obj.Status.AllowedFields).To(Equal([]string{"instanceType"}))
			g.Expect(obj.Status.DeniedFields).To(Equal([]string{"vpcId"}))
			g.Expect(obj.Status.GlobalDefault).To(Equal("DefaultAllow"))
			g.Expect(obj.Status.Decisions).To(HaveKeyWithValue("region", "DefaultAllow"))
			g.Expect(meta.IsStatusConditionTrue(obj.Status.Conditions, v1alpha1.ConditionReady)).To(BeTrue())
			g.Expect(meta.IsStatusConditionTrue(obj.Status.Conditions, v1alpha1.ConditionFieldsValid)).To(BeTrue())
		}, timeout, interval).Should(Succeed())
	})

	It("reports unknown fields written by other clients", func() {
		key := governance.PolicyKey{ProviderKind: governance.ProviderAKS, Name: "foreign-rules"}
		obj := resource.ToObject(&governance.Policy{
			Key:   key,
			Rules: governance.RuleSet{"gpuDriver": {Allow: true}},
		}, "kubectl")
		obj.Namespace = kube.DefaultNamespace
		Expect(k8sClient.Create(ctx, obj)).To(Succeed())

		Eventually(func(g Gomega) {
			got := &v1alpha1.PlanPolicy{}
			g.Expect(k8sClient.Get(ctx, objectKey(key), got)).To(Succeed())
			g.Expect(got.Status.UnknownFields).To(Equal([]string{"gpuDriver"}))
			g.Expect(meta.IsStatusConditionFalse(got.Status.Conditions, v1alpha1.ConditionFieldsValid)).To(BeTrue())
		}, timeout, interval).Should(Succeed())
	})

	It("rejects specs that violate the CRD schema", func() {
		obj := resource.ToObject(&governance.Policy{
			Key: governance.PolicyKey{ProviderKind: governance.ProviderGKE, Name: "bad"},
		}, "kubectl")
		obj.Namespace = kube.DefaultNamespace
		obj.Spec.ProviderKind = "DOKS"
		Expect(k8sClient.Create(ctx, obj)).NotTo(Succeed())
	})

	It("keeps identity and the read-only flag immutable", func() {
		obj := resource.ToObject(&governance.Policy{
			Key: governance.PolicyKey{ProviderKind: governance.ProviderGKE, Name: "frozen"},
		}, "kubectl")
		obj.Namespace = kube.DefaultNamespace
		Expect(k8sClient.Create(ctx, obj)).To(Succeed())

		renamed := obj.DeepCopy()
		renamed.Spec.PolicyName = "thawed"
		Expect(k8sClient.Update(ctx, renamed)).NotTo(Succeed())

		moved := obj.DeepCopy()
		moved.Spec.ProviderKind = "EKS"
		Expect(k8sClient.Update(ctx, moved)).NotTo(Succeed())

		promoted := obj.DeepCopy()
		promoted.Spec.ReadOnly = true
		Expect(k8sClient.Update(ctx, promoted)).NotTo(Succeed())

		described := obj.DeepCopy()
		described.Spec.Description = "edited"
		Expect(k8sClient.Update(ctx, described)).To(Succeed())
	})

	It("rejects edits to a built-in policy", func() {
		got := &v1alpha1.PlanPolicy{}
		Eventually(func() error {
			return k8sClient.Get(ctx, objectKey(bootstrap.BuiltinKey(governance.ProviderEKS)), got)
		}, timeout, interval).Should(Succeed())

		got.Spec.Rules["vpcId"] = v1alpha1.FieldRule{Allow: true}
		Expect(k8sClient.Update(ctx, got)).NotTo(Succeed())
	})
})

var _ = Describe("Kubernetes store", func() {
	It("detects concurrent modification through resourceVersion", func() {
		store := kube.NewStore(k8sClient)
		created, err := store.Create(ctx, &governance.Policy{
			Key:   governance.PolicyKey{ProviderKind: governance.ProviderGKE, Name: "race"},
			Rules: governance.RuleSet{},
		})
		Expect(err).NotTo(HaveOccurred())

		first := created.Clone()
		first.Rules.SetDeny("domain", true)
		_, err = store.Update(ctx, first)
		Expect(err).NotTo(HaveOccurred())

		stale := created.Clone()
		stale.Rules.SetAllow("domain", true)
		_, err = store.Update(ctx, stale)
		Expect(err).To(MatchError(governance.ErrConflict))

		Expect(store.Delete(ctx, created)).To(MatchError(governance.ErrConflict))

		current, err := store.Get(ctx, created.Key)
		Expect(err).NotTo(HaveOccurred())
		Expect(current.Rules).To(Equal(governance.RuleSet{"domain": {Deny: true}}))
		Expect(store.Delete(ctx, current)).To(Succeed())
	})
})
