package library

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
)

// dummyDigest keeps the unknown-username path as slow as a real comparison.
const dummyDigest = "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$0d6Yt8h2b9zI1l6a5b1mZJj0iQ2l0S9V7Zs2cK3f8xg"

// Authenticate looks the user up by username and compares the password
// digest. Unknown usernames and wrong passwords both yield
// ErrInvalidCredentials.
func (d *Database) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := d.userByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		_, _, _ = CheckPassword(password, dummyDigest)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, legacy, err := CheckPassword(password, u.PasswordHash)
	if err != nil {
		slog.Warn("unreadable password digest", "username", username, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if legacy {
		if err := d.upgradeDigest(ctx, u.ID, password); err != nil {
			slog.Warn("could not upgrade password digest", "username", username, "error", err)
		}
	}
	u.PasswordHash = ""
	return u, nil
}

func (d *Database) userByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u User
	err := d.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, COALESCE(full_name,''), COALESCE(role,'staff') FROM users WHERE username=$1`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *Database) upgradeDigest(ctx context.Context, userID int64, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	_, err = d.exec(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, hash, userID)
	return err
}
