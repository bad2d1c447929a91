package domain

type User struct {
	ID                   string `db:"id"`
	Username             string `db:"username"`
	Email                string `db:"email"`
	Hash                 string `db:"password_hash"`
	Age                  int    `db:"age"`
	IsActive             bool   `db:"is_active"`
	IsSuperuser          bool   `db:"is_superuser"`
	ActivationKey        string `db:"activation_key"`
	ActivationKeyCreated string `db:"activation_key_created"`
	CreatedAt            string `db:"created_at"`
}

// Profile is the one-to-one extension of User with free-form fields
// editable on the account page.
type Profile struct {
	UserID  string `db:"user_id"`
	Tagline string `db:"tagline"`
	About   string `db:"about"`
	Gender  string `db:"gender"`
}
