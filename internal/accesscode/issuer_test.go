package accesscode

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/clinic-api/internal/session"
	apperrors "github.com/vetdesk/clinic-api/pkg/errors"
)

// fakeEmail captures outbound codes the way the approver would read them
// from their inbox.
type fakeEmail struct {
	to    []string
	codes []string
	fail  bool
}

func (f *fakeEmail) SendAccessCode(_ context.Context, to string, code string) error {
	f.to = append(f.to, to)
	f.codes = append(f.codes, code)
	if f.fail {
		return errors.New("smtp: connection refused")
	}
	return nil
}

func (f *fakeEmail) SendPasswordReset(context.Context, string, string) error { return nil }
func (f *fakeEmail) SendCustom(context.Context, string, string, string) error {
	return nil
}

func newTestIssuer(mail *fakeEmail) *Issuer {
	return NewIssuer(session.NewMemoryStore(), mail, Config{
		ApproverEmail: "owner@clinic.example",
		TTL:           15 * time.Minute,
	}, nil)
}

func TestIssueDispatchesUppercaseHexCode(t *testing.T) {
	mail := &fakeEmail{}
	issuer := newTestIssuer(mail)

	require.NoError(t, issuer.Issue(context.Background(), "s1"))

	require.Len(t, mail.codes, 1)
	assert.Equal(t, "owner@clinic.example", mail.to[0])
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{8}$`), mail.codes[0])
}

func TestIssueThenRedeemSucceedsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	mail := &fakeEmail{}
	issuer := newTestIssuer(mail)

	require.NoError(t, issuer.Issue(ctx, "s1"))
	code := mail.codes[0]

	ok, err := issuer.Redeem(ctx, "s1", code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = issuer.Redeem(ctx, "s1", code)
	require.NoError(t, err)
	assert.False(t, ok, "second redemption of the same code must fail")
}

func TestReissueInvalidatesOldCode(t *testing.T) {
	ctx := context.Background()
	mail := &fakeEmail{}
	issuer := newTestIssuer(mail)

	require.NoError(t, issuer.Issue(ctx, "s1"))
	require.NoError(t, issuer.Issue(ctx, "s1"))
	require.Len(t, mail.codes, 2)

	old, fresh := mail.codes[0], mail.codes[1]

	ok, err := issuer.Redeem(ctx, "s1", old)
	require.NoError(t, err)
	assert.False(t, ok, "stale code must not redeem after reissue")

	ok, err = issuer.Redeem(ctx, "s1", fresh)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedeemIsSessionBound(t *testing.T) {
	ctx := context.Background()
	mail := &fakeEmail{}
	issuer := newTestIssuer(mail)

	require.NoError(t, issuer.Issue(ctx, "s1"))

	ok, err := issuer.Redeem(ctx, "s2", mail.codes[0])
	require.NoError(t, err)
	assert.False(t, ok, "a code must only redeem for the session it was issued to")
}

func TestRedeemEmptyCode(t *testing.T) {
	issuer := newTestIssuer(&fakeEmail{})
	ok, err := issuer.Redeem(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedeemExpiredCode(t *testing.T) {
	ctx := context.Background()
	mail := &fakeEmail{}
	issuer := newTestIssuer(mail)

	require.NoError(t, issuer.Issue(ctx, "s1"))

	issuer.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	ok, err := issuer.Redeem(ctx, "s1", mail.codes[0])
	require.NoError(t, err)
	assert.False(t, ok, "codes past their TTL must not redeem")
}

func TestDeliveryFailureDoesNotRollBackIssuance(t *testing.T) {
	ctx := context.Background()
	mail := &fakeEmail{fail: true}
	issuer := newTestIssuer(mail)

	err := issuer.Issue(ctx, "s1")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotificationDelivery))

	// The code was stored before the send, so it still redeems.
	ok, err := issuer.Redeem(ctx, "s1", mail.codes[0])
	require.NoError(t, err)
	assert.True(t, ok)
}
