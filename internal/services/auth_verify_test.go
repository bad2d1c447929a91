package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"geekshop/internal/repos"
	"geekshop/internal/services"
)

// recordingSender captures verification mail instead of dialing SMTP.
type recordingSender struct {
	email, username, url string
	sent                 int
}

func (r *recordingSender) SendVerification(email, username, verifyURL string) error {
	r.email, r.username, r.url = email, username, verifyURL
	r.sent++
	return nil
}

func TestRegisterAndVerify(t *testing.T) {
	db := memdb(t)
	sender := &recordingSender{}
	auth := &services.AuthService{
		Users:      repos.NewUserRepo(db),
		Mail:       sender,
		DomainName: "http://shop.test",
		KeyTTL:     48 * time.Hour,
	}

	u, err := auth.Register(services.RegisterForm{
		Username: "newbie", Email: "newbie@shop.test", Password: "Sup3rSecret", Age: 30,
	})
	require.NoError(t, err)
	require.False(t, u.IsActive)
	require.NotEmpty(t, u.ActivationKey)
	require.Equal(t, 1, sender.sent)
	require.Contains(t, sender.url, "/auth/verify/newbie@shop.test/"+u.ActivationKey)

	// a registered-but-unverified account cannot log in
	_, err = auth.Login("sid-1", "newbie", "Sup3rSecret")
	require.ErrorIs(t, err, services.ErrBadCreds)

	// wrong key is a silent no-op
	got, activated, err := auth.Verify("newbie@shop.test", "not-the-key")
	require.NoError(t, err)
	require.False(t, activated)
	require.False(t, got.IsActive)

	// unknown address is a silent no-op too
	_, activated, err = auth.Verify("nobody@shop.test", u.ActivationKey)
	require.NoError(t, err)
	require.False(t, activated)

	// the real key activates and clears itself
	got, activated, err = auth.Verify("newbie@shop.test", u.ActivationKey)
	require.NoError(t, err)
	require.True(t, activated)
	require.True(t, got.IsActive)

	var key string
	require.NoError(t, db.Get(&key, `SELECT activation_key FROM users WHERE id = ?`, u.ID))
	require.Empty(t, key)

	// the key is single-use
	_, activated, err = auth.Verify("newbie@shop.test", u.ActivationKey)
	require.NoError(t, err)
	require.False(t, activated)

	// and now login sticks to the session
	logged, err := auth.Login("sid-1", "newbie", "Sup3rSecret")
	require.NoError(t, err)
	cur, err := auth.CurrentUser("sid-1")
	require.NoError(t, err)
	require.Equal(t, logged.ID, cur.ID)
}

func TestVerifyExpiredKey(t *testing.T) {
	db := memdb(t)
	auth := &services.AuthService{
		Users:      repos.NewUserRepo(db),
		Mail:       &recordingSender{},
		DomainName: "http://shop.test",
		KeyTTL:     48 * time.Hour,
	}

	u, err := auth.Register(services.RegisterForm{
		Username: "slowpoke", Email: "slow@shop.test", Password: "Sup3rSecret", Age: 44,
	})
	require.NoError(t, err)

	// age the key past the 48h window
	stale := time.Now().UTC().Add(-72 * time.Hour).Format(time.RFC3339)
	_, err = db.Exec(`UPDATE users SET activation_key_created = ? WHERE id = ?`, stale, u.ID)
	require.NoError(t, err)

	_, activated, err := auth.Verify("slow@shop.test", u.ActivationKey)
	require.NoError(t, err)
	require.False(t, activated)

	var active bool
	require.NoError(t, db.Get(&active, `SELECT is_active FROM users WHERE id = ?`, u.ID))
	require.False(t, active)
}
