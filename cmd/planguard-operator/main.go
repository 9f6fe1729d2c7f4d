// Package main is the entrypoint for the planguard-operator.
package main

import (
	"flag"
	"os"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/imamik/planguard/api/v1alpha1"
	"github.com/imamik/planguard/internal/config"
	"github.com/imamik/planguard/internal/operator/controller"
	"github.com/imamik/planguard/internal/store/kube"
	"github.com/imamik/planguard/internal/util/labels"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")

	// Version is set at build time
	Version = "dev"
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1alpha1.AddToScheme(scheme))
}

func main() {
	var (
		configPath           string
		namespace            string
		metricsAddr          string
		probeAddr            string
		enableLeaderElection bool
		leaderElectionID     string
		skipSeed             bool
	)

	flag.StringVar(&configPath, "config", "", "Path to planguard.yaml. Defaults apply when empty.")
	flag.StringVar(&namespace, "namespace", "", "Namespace holding PlanPolicy resources. Overrides the config file.")
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", true, "Enable leader election for controller manager.")
	flag.StringVar(&leaderElectionID, "leader-election-id", "planguard-operator", "The name of the leader election resource.")
	flag.BoolVar(&skipSeed, "skip-seed", false, "Do not create the built-in policies on start.")

	opts := zap.Options{
		Development: os.Getenv("DEBUG") == "true",
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	setupLog.Info("starting planguard-operator", "version", Version)

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			setupLog.Error(err, "unable to load config", "path", configPath)
			os.Exit(1)
		}
		cfg = loaded
	}
	if namespace != "" {
		cfg.Store.Kubernetes.Namespace = namespace
	}

	schemaProvider, err := cfg.SchemaProvider()
	if err != nil {
		setupLog.Error(err, "unable to load plan schema")
		os.Exit(1)
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       leaderElectionID,
		// LeaderElectionReleaseOnCancel defines if the leader should step down voluntarily
		// when the Manager ends. This requires the binary to immediately end when the
		// Manager is stopped, otherwise, this setting is unsafe.
		LeaderElectionReleaseOnCancel: true,
		Cache: cache.Options{
			ByObject: map[client.Object]cache.ByObject{
				&v1alpha1.PlanPolicy{}: {
					Namespaces: map[string]cache.Config{cfg.Store.Kubernetes.Namespace: {}},
				},
			},
		},
	})
	if err != nil {
		setupLog.Error(err, "unable to create manager")
		os.Exit(1)
	}

	if err = controller.NewPlanPolicyReconciler(
		mgr.GetClient(),
		mgr.GetScheme(),
		mgr.GetEventRecorderFor("planpolicy-controller"),
		controller.WithSchema(schemaProvider),
		controller.WithDefaults(cfg.ResolveDefault),
	).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "PlanPolicy")
		os.Exit(1)
	}

	if !skipSeed {
		store := kube.NewStore(mgr.GetClient(),
			kube.WithNamespace(cfg.Store.Kubernetes.Namespace),
			kube.WithManagedBy(labels.ManagedByOperator),
			kube.WithLogger(ctrl.Log.WithName("store")),
		)
		if err := mgr.Add(controller.NewSeeder(store, ctrl.Log.WithName("seed"))); err != nil {
			setupLog.Error(err, "unable to add seeder")
			os.Exit(1)
		}
	}

	// Add health checks
	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager", "namespace", cfg.Store.Kubernetes.Namespace)
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
