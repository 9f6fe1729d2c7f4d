//go:build integration

// Package controller contains integration tests using envtest.
//
// Envtest provides a real Kubernetes API server and etcd instance. The suite
// runs the PlanPolicy controller and exercises the Kubernetes store against
// the real API, including CRD validation and resourceVersion preconditions.
//
// Run these tests with:
//
//	KUBEBUILDER_ASSETS="$(setup-envtest use -p path)" go test -v -tags=integration ./internal/operator/controller/...
package controller

import (
	"context"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/envtest"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/imamik/planguard/api/v1alpha1"
	"github.com/imamik/planguard/internal/governance"
	"github.com/imamik/planguard/internal/store/kube"
	"github.com/imamik/planguard/internal/util/labels"
)

// Test configuration
var (
	cfg       *rest.Config
	k8sClient client.Client
	testEnv   *envtest.Environment
	ctx       context.Context
	cancel    context.CancelFunc
)

// TestControllerIntegration is the entry point for Ginkgo tests.
func TestControllerIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Controller Integration Suite")
}

var _ = BeforeSuite(func() {
	logf.SetLogger(zap.New(zap.WriteTo(GinkgoWriter), zap.UseDevMode(true)))

	ctx, cancel = context.WithCancel(context.Background())

	By("bootstrapping test environment with real kube-apiserver and etcd")
	testEnv = &envtest.Environment{
		CRDDirectoryPaths:     []string{filepath.Join("..", "..", "..", "config", "crd", "bases")},
		ErrorIfCRDPathMissing: true,
	}

	var err error
	cfg, err = testEnv.Start()
	Expect(err).NotTo(HaveOccurred())
	Expect(cfg).NotTo(BeNil())

	k8sClient, err = client.New(cfg, client.Options{Scheme: v1alpha1.Scheme})
	Expect(err).NotTo(HaveOccurred())

	By("creating the policy namespace")
	Expect(k8sClient.Create(ctx, &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: kube.DefaultNamespace},
	})).To(Succeed())

	k8sManager, err := ctrl.NewManager(cfg, ctrl.Options{
		Scheme: v1alpha1.Scheme,
		// Disable the metrics server to avoid port conflicts in tests
		Metrics: metricsserver.Options{BindAddress: "0"},
	})
	Expect(err).NotTo(HaveOccurred())

	err = NewPlanPolicyReconciler(
		k8sManager.GetClient(),
		k8sManager.GetScheme(),
		k8sManager.GetEventRecorderFor("planpolicy-controller"),
		WithMetrics(false),
		WithDefaults(func(kind governance.ProviderKind) governance.Decision {
			if kind == governance.ProviderEKS {
				return governance.DefaultAllow
			}
			return governance.DefaultDeny
		}),
	).SetupWithManager(k8sManager)
	Expect(err).NotTo(HaveOccurred())

	store := kube.NewStore(k8sManager.GetClient(), kube.WithManagedBy(labels.ManagedByOperator))
	Expect(k8sManager.Add(NewSeeder(store, logf.Log.WithName("seed")))).To(Succeed())

	go func() {
		defer GinkgoRecover()
		err := k8sManager.Start(ctx)
		Expect(err).NotTo(HaveOccurred())
	}()

	By("waiting for manager cache to sync")
	Expect(k8sManager.GetCache().WaitForCacheSync(ctx)).To(BeTrue())
})

var _ = AfterSuite(func() {
	cancel()
	By("tearing down the test environment")
	Expect(testEnv.Stop()).To(Succeed())
})
