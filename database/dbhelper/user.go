package dbhelper

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/menuqr/menuqr/database"
	"github.com/menuqr/menuqr/models"
)

func CreateUser(tx *sql.Tx, restaurantID uuid.UUID, name, email, hashedPassword string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(`
		INSERT INTO users (restaurant_id, name, email, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		restaurantID, name, email, hashedPassword).Scan(&id)
	return id, err
}

func IsUserExists(email string) (bool, error) {
	var count int
	err := database.MenuQR.QueryRow(`SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER($1) AND archived_at IS NULL`, email).Scan(&count)
	return count > 0, err
}

func AssignRole(tx *sql.Tx, userID uuid.UUID, role models.Role) error {
	_, err := tx.Exec(`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role)
	return err
}

// GetUserByPassword verifies credentials and returns the user's id,
// name and owning restaurant.
func GetUserByPassword(email, password string) (uuid.UUID, uuid.UUID, string, error) {
	var (
		id             uuid.UUID
		restaurantID   uuid.UUID
		name           string
		hashedPassword string
	)

	err := database.MenuQR.QueryRow(`
		SELECT id, restaurant_id, name, password FROM users
		WHERE LOWER(email) = LOWER($1) AND archived_at IS NULL`, email).
		Scan(&id, &restaurantID, &name, &hashedPassword)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) != nil {
		return uuid.Nil, uuid.Nil, "", fmt.Errorf("incorrect password")
	}

	return id, restaurantID, name, nil
}

// GetUserByID returns the owning restaurant and name of an active user.
func GetUserByID(userID uuid.UUID) (uuid.UUID, string, error) {
	var (
		restaurantID uuid.UUID
		name         string
	)
	err := database.MenuQR.QueryRow(`
		SELECT restaurant_id, name FROM users
		WHERE id = $1 AND archived_at IS NULL`, userID).
		Scan(&restaurantID, &name)
	return restaurantID, name, err
}

func GetUserRoles(userID uuid.UUID) ([]string, error) {
	rows, err := database.MenuQR.Query(`
		SELECT role FROM user_roles
		WHERE user_id = $1 AND archived_at IS NULL`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// CreateRestaurant registers a tenant alongside its first owner
// account.
func CreateRestaurant(tx *sql.Tx, name, description string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(`
		INSERT INTO restaurants (name, description)
		VALUES ($1, $2)
		RETURNING id`, name, description).Scan(&id)
	return id, err
}
