package notification

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestTenantTopic(t *testing.T) {
	if got := TenantTopic("grace"); got != "church_grace" {
		t.Fatalf("TenantTopic() = %q, want church_grace", got)
	}
}

func TestPusherWithoutFirebaseIsDisabled(t *testing.T) {
	p := NewFCMPusher(nil, 10, zap.NewNop())
	err := p.SendToTopic(context.Background(), TenantTopic("grace"), "t", "b")
	if !errors.Is(err, ErrPushDisabled) {
		t.Fatalf("SendToTopic() = %v, want ErrPushDisabled", err)
	}
}
