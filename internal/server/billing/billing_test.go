package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instantbranding/brandkit/internal/common"
)

var body = []byte(`{"event_id":"evt_1","event_type":"subscription.created","data":{"id":"sub_1","status":"active","custom_data":{"user_id":"u1"},"items":[{"price":{"id":"pri_pro"}}]}}`)

func fixedVerifier(now time.Time) *Verifier {
	v := NewVerifier("whsec", 5*time.Minute)
	v.now = func() time.Time { return now }
	return v
}

func TestVerify(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := fixedVerifier(now)

	require.NoError(t, v.Verify(Sign("whsec", now, body), body))
	require.NoError(t, v.Verify(Sign("whsec", now.Add(-4*time.Minute), body), body))

	cases := map[string]string{
		"empty":         "",
		"no ts":         "h1=abcd",
		"no h1":         "ts=1700000000",
		"bad ts":        "ts=yesterday;h1=00",
		"wrong secret":  Sign("other", now, body),
		"stale":         Sign("whsec", now.Add(-6*time.Minute), body),
		"future":        Sign("whsec", now.Add(6*time.Minute), body),
		"non-hex h1":    "ts=1700000000;h1=zz",
		"tampered body": Sign("whsec", now, []byte(`{}`)),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, v.Verify(header, body), common.ErrInvalidSignature)
		})
	}
}

func TestVerify_NoSecret(t *testing.T) {
	v := NewVerifier("", time.Minute)
	assert.ErrorIs(t, v.Verify(Sign("", time.Now(), body), body), common.ErrInvalidSignature)
}

func TestParseAndResolve(t *testing.T) {
	ev, err := ParseEvent(body)
	require.NoError(t, err)
	assert.True(t, ev.Handled())

	pc, err := ev.Resolve(map[string]string{"pri_pro": "pro"})
	require.NoError(t, err)
	assert.Equal(t, &PlanChange{UserID: "u1", Plan: "pro", SubscriptionID: "sub_1", Status: "active"}, pc)

	_, err = ev.Resolve(nil)
	assert.True(t, common.IsValidation(err))
}

func TestResolve_CustomPlanWinsAndCancel(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"event_id":"e","event_type":"subscription.updated","data":{"id":"s","status":"active","custom_data":{"user_id":"u","plan":"agency"},"items":[{"price":{"id":"pri_pro"}}]}}`))
	require.NoError(t, err)
	pc, err := ev.Resolve(map[string]string{"pri_pro": "pro"})
	require.NoError(t, err)
	assert.Equal(t, "agency", pc.Plan)

	ev, err = ParseEvent([]byte(`{"event_id":"e2","event_type":"subscription.canceled","data":{"id":"s","custom_data":{"user_id":"u"}}}`))
	require.NoError(t, err)
	pc, err = ev.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "free", pc.Plan)
	assert.Equal(t, "canceled", pc.Status)
}

func TestParseEvent_Errors(t *testing.T) {
	_, err := ParseEvent([]byte(`not json`))
	assert.True(t, common.IsValidation(err))

	_, err = ParseEvent([]byte(`{"event_type":"x"}`))
	assert.True(t, common.IsValidation(err))

	ev, err := ParseEvent([]byte(`{"event_id":"e","event_type":"transaction.completed"}`))
	require.NoError(t, err)
	assert.False(t, ev.Handled())

	ev, err = ParseEvent([]byte(`{"event_id":"e","event_type":"subscription.created","data":{}}`))
	require.NoError(t, err)
	_, err = ev.Resolve(nil)
	assert.True(t, common.IsValidation(err))
}
