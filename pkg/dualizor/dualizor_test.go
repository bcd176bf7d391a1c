package dualizor

import (
	"context"
	"testing"

	"github.com/dualizor/dualizor/internal/config"
	"github.com/dualizor/dualizor/pkg/catalog"
	"github.com/dualizor/dualizor/pkg/types"
)

func configFixture(mode string, validate bool) config.DispatchConfig {
	return config.DispatchConfig{
		EnableStartupValidation: validate,
		StartupValidationMode:   mode,
		DiscoverHandlers:        true,
		DiscoverBehaviors:       true,
		DiscoverNotifications:   true,
	}
}

type createUser struct {
	types.CommandTag
	Name string
}

type getUser struct {
	types.QueryTag
	ID string
}

type userCreated struct {
	types.NotificationTag
	Name string
}

func TestNewComposesAndDispatches(t *testing.T) {
	opts := NewOptions()
	RegisterHandlerFunc(opts, "create_user", func(ctx context.Context, c createUser) (string, error) {
		return "created:" + c.Name, nil
	})
	RegisterHandlerFunc(opts, "get_user", func(ctx context.Context, q getUser) (string, error) {
		return "user:" + q.ID, nil
	})

	d, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := d.Send(context.Background(), createUser{Name: "ada"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if res != "created:ada" {
		t.Errorf("Expected created:ada, got %v", res)
	}

	got, err := Send[string](context.Background(), d, getUser{ID: "7"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got != "user:7" {
		t.Errorf("Expected user:7, got %q", got)
	}
}

func TestNewNilOptionsSucceeds(t *testing.T) {
	d, err := New(nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !d.Catalog().Frozen() {
		t.Error("Expected frozen catalog after composition")
	}
}

func TestNewThrowModeFailsOnUnhandledRequest(t *testing.T) {
	opts := NewOptions()
	DeclareRequest[createUser](opts)

	_, err := New(opts)
	if err == nil {
		t.Fatal("Expected composition failure for unhandled request type")
	}
	if !types.IsErrCode(err, types.ErrCodeHandlerCardinality) {
		t.Errorf("Expected HANDLER_CARDINALITY, got %s", types.GetErrorCode(err))
	}
}

func TestNewThrowModeFailsOnOverBinding(t *testing.T) {
	opts := NewOptions()
	RegisterHandlerFunc(opts, "first", func(ctx context.Context, c createUser) (string, error) {
		return "first", nil
	})
	RegisterHandlerFunc(opts, "second", func(ctx context.Context, c createUser) (string, error) {
		return "second", nil
	})

	if _, err := New(opts); !types.IsErrCode(err, types.ErrCodeHandlerCardinality) {
		t.Errorf("Expected HANDLER_CARDINALITY, got %v", err)
	}
}

func TestNewIgnoreModeDispatchesLastBound(t *testing.T) {
	opts := NewOptions()
	opts.StartupValidationMode = catalog.ModeIgnore
	RegisterHandlerFunc(opts, "first", func(ctx context.Context, c createUser) (string, error) {
		return "first", nil
	})
	RegisterHandlerFunc(opts, "second", func(ctx context.Context, c createUser) (string, error) {
		return "second", nil
	})

	d, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := d.Send(context.Background(), createUser{})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if res != "second" {
		t.Errorf("Expected last-bound handler to win, got %v", res)
	}
}

func TestNewValidationDisabledSkipsDefects(t *testing.T) {
	opts := NewOptions()
	opts.EnableStartupValidation = false
	DeclareRequest[createUser](opts)

	d, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// The defect surfaces at dispatch time instead.
	if _, err := d.Send(context.Background(), createUser{}); !types.IsErrCode(err, types.ErrCodeUnresolvedHandler) {
		t.Errorf("Expected UNRESOLVED_HANDLER, got %v", err)
	}
}

func TestManualBindingWinsOverDiscovery(t *testing.T) {
	opts := NewOptions()
	RegisterHandlerFunc(opts, "manual", func(ctx context.Context, c createUser) (string, error) {
		return "manual", nil
	})
	DiscoverHandlerFunc(opts, "discovered", func(ctx context.Context, c createUser) (string, error) {
		return "discovered", nil
	})

	d, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := d.Send(context.Background(), createUser{})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if res != "manual" {
		t.Errorf("Expected manual binding to win, got %v", res)
	}
}

func TestDiscoveryDisabledLeavesTypeUnbound(t *testing.T) {
	opts := NewOptions()
	opts.EnableStartupValidation = false
	opts.RegisterDiscoveredHandlers = false
	DiscoverHandlerFunc(opts, "discovered", func(ctx context.Context, c createUser) (string, error) {
		return "discovered", nil
	})

	d, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := d.Send(context.Background(), createUser{}); !types.IsErrCode(err, types.ErrCodeUnresolvedHandler) {
		t.Errorf("Expected UNRESOLVED_HANDLER, got %v", err)
	}
}

func TestDiscoveredBehaviorAndNotificationHandlerApply(t *testing.T) {
	var behaviorRan, notified bool

	opts := NewOptions()
	RegisterHandlerFunc(opts, "create_user", func(ctx context.Context, c createUser) (string, error) {
		return "ok", nil
	})
	DiscoverBehavior(opts, "probe", 0,
		types.BehaviorFunc(func(ctx context.Context, req types.Request, next types.Next) (any, error) {
			behaviorRan = true
			return next(ctx)
		}))
	DiscoverNotificationHandler[userCreated](opts, "probe",
		types.NotificationFunc(func(ctx context.Context, n types.Notification) error {
			notified = true
			return nil
		}))

	d, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := d.Send(context.Background(), createUser{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !behaviorRan {
		t.Error("Expected discovered behavior to run")
	}

	if err := d.Publish(context.Background(), userCreated{Name: "ada"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if !notified {
		t.Error("Expected discovered notification handler to run")
	}
}

func TestBehaviorForConstrainsByRequestType(t *testing.T) {
	var hits int

	opts := NewOptions()
	RegisterHandlerFunc(opts, "create_user", func(ctx context.Context, c createUser) (string, error) {
		return "ok", nil
	})
	RegisterHandlerFunc(opts, "get_user", func(ctx context.Context, q getUser) (string, error) {
		return "ok", nil
	})
	RegisterBehaviorFor[createUser](opts, "audit", 0,
		types.BehaviorFunc(func(ctx context.Context, req types.Request, next types.Next) (any, error) {
			hits++
			return next(ctx)
		}))

	d, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := d.Send(context.Background(), createUser{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := d.Send(context.Background(), getUser{}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if hits != 1 {
		t.Errorf("Expected constrained behavior to run once, ran %d times", hits)
	}
}

func TestPublishWithoutHandlersSucceeds(t *testing.T) {
	d, err := New(NewOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := d.Publish(context.Background(), userCreated{}); err != nil {
		t.Errorf("Expected no-op publish to succeed, got %v", err)
	}
}

func TestOptionsFromConfigParsesMode(t *testing.T) {
	opts, err := OptionsFromConfig(configFixture("log", true))
	if err != nil {
		t.Fatalf("OptionsFromConfig failed: %v", err)
	}
	if opts.StartupValidationMode != catalog.ModeLog {
		t.Errorf("Expected log mode, got %v", opts.StartupValidationMode)
	}
	if !opts.EnableStartupValidation {
		t.Error("Expected validation enabled")
	}

	if _, err := OptionsFromConfig(configFixture("loud", true)); err == nil {
		t.Error("Expected error for unknown validation mode")
	}
}
