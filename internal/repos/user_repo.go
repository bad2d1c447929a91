package repos

import (
	"geekshop/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, username, email, password_hash, age, is_active, is_superuser,
    activation_key, activation_key_created, created_at`

func (r *UserRepo) ByUsername(username string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE username = ?`, username)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) List(limit, offset int) ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, `
	  SELECT `+userCols+`
	  FROM users
	  ORDER BY username
	  LIMIT ? OFFSET ?
	`, limit, offset)
	return out, err
}

// Create inserts the user and an empty profile row together.
func (r *UserRepo) Create(u domain.User) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO users(id, username, email, password_hash, age, is_active, is_superuser,
	                    activation_key, activation_key_created)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.Hash, u.Age, u.IsActive, u.IsSuperuser,
		u.ActivationKey, u.ActivationKeyCreated); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO profiles(user_id) VALUES(?)`, u.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateAccount writes the user's own editable fields and profile in one tx.
func (r *UserRepo) UpdateAccount(u domain.User, p domain.Profile) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  UPDATE users SET username = ?, email = ?, age = ? WHERE id = ?
	`, u.Username, u.Email, u.Age, u.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(`
	  INSERT INTO profiles(user_id, tagline, about, gender)
	  VALUES(?, ?, ?, ?)
	  ON CONFLICT(user_id) DO UPDATE SET
	    tagline = excluded.tagline, about = excluded.about, gender = excluded.gender
	`, u.ID, p.Tagline, p.About, p.Gender); err != nil {
		return err
	}

	return tx.Commit()
}

// AdminUpdate writes the admin-editable field list. An empty hash keeps
// the stored password.
func (r *UserRepo) AdminUpdate(u domain.User) error {
	if u.Hash != "" {
		_, err := r.DB.Exec(`
		  UPDATE users SET username = ?, email = ?, age = ?, is_active = ?, is_superuser = ?,
		                   password_hash = ?
		  WHERE id = ?
		`, u.Username, u.Email, u.Age, u.IsActive, u.IsSuperuser, u.Hash, u.ID)
		return err
	}
	_, err := r.DB.Exec(`
	  UPDATE users SET username = ?, email = ?, age = ?, is_active = ?, is_superuser = ?
	  WHERE id = ?
	`, u.Username, u.Email, u.Age, u.IsActive, u.IsSuperuser, u.ID)
	return err
}

// Activate flips the account on and clears the activation key.
func (r *UserRepo) Activate(id string) error {
	_, err := r.DB.Exec(`
	  UPDATE users
	  SET is_active = 1, activation_key = '', activation_key_created = ''
	  WHERE id = ?
	`, id)
	return err
}

// SetActive is the admin soft-delete toggle target.
func (r *UserRepo) SetActive(id string, active bool) error {
	_, err := r.DB.Exec(`UPDATE users SET is_active = ? WHERE id = ?`, active, id)
	return err
}

func (r *UserRepo) Profile(userID string) (domain.Profile, error) {
	var p domain.Profile
	err := r.DB.Get(&p, `
	  SELECT user_id, tagline, about, gender FROM profiles WHERE user_id = ?
	`, userID)
	return p, err
}

// ---------- session binding (sid cookie -> user) ----------

func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.DB.Exec(`
	  INSERT INTO sessions(id, user_id, last_seen)
	  VALUES(?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, last_seen = CURRENT_TIMESTAMP
	`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
	  SELECT u.id, u.username, u.email, u.password_hash, u.age, u.is_active, u.is_superuser,
	         u.activation_key, u.activation_key_created, u.created_at
	  FROM sessions s
	  JOIN users u ON u.id = s.user_id
	  WHERE s.id = ?
	`, sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`
	  UPDATE sessions SET user_id = NULL, last_seen = CURRENT_TIMESTAMP WHERE id = ?
	`, sid)
	return err
}
