package mysql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"

	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

const errDupEntry = 1062

// Repo is a ReservationStore on MySQL. One row per reservation; each call is
// a single statement, so per-key atomicity comes from InnoDB row locks.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate applies the embedded schema files in name order. They are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, n := range names {
		b, err := migrations.ReadFile(n)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("migrate %s: %w", n, err)
		}
	}
	return nil
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: reservation ID cannot be empty", domain.ErrInvalidArgument)
	}
	return nil
}

type scanner interface{ Scan(dest ...any) error }

func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		r          domain.Reservation
		rt, status string
	)
	if err := s.Scan(&r.ID, &r.GuestName, &r.GuestEmail, &r.CheckIn, &r.CheckOut,
		&rt, &r.TotalPrice, &status, &r.CreatedAt); err != nil {
		return domain.Reservation{}, err
	}
	r.RoomType, r.Status = domain.RoomType(rt), domain.Status(status)
	r.CheckIn, r.CheckOut, r.CreatedAt = dates.Day(r.CheckIn), dates.Day(r.CheckOut), dates.Day(r.CreatedAt)
	return r, nil
}

func (r *Repo) Save(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	if err := checkID(res.ID); err != nil {
		return domain.Reservation{}, err
	}
	_, err := r.db.ExecContext(ctx, insertReservationSQL,
		res.ID,
		res.GuestName,
		res.GuestEmail,
		dates.Day(res.CheckIn),
		dates.Day(res.CheckOut),
		string(res.RoomType),
		res.TotalPrice,
		string(res.Status),
		dates.Day(res.CreatedAt),
	)
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errDupEntry {
		return domain.Reservation{}, fmt.Errorf("%w: reservation %s already exists", domain.ErrDuplicate, res.ID)
	}
	if err != nil {
		return domain.Reservation{}, err
	}
	return res, nil
}

func (r *Repo) Update(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	if err := checkID(res.ID); err != nil {
		return domain.Reservation{}, err
	}
	out, err := r.db.ExecContext(ctx, updateReservationSQL,
		res.GuestName,
		res.GuestEmail,
		dates.Day(res.CheckIn),
		dates.Day(res.CheckOut),
		string(res.RoomType),
		res.TotalPrice,
		string(res.Status),
		res.ID,
	)
	if err != nil {
		return domain.Reservation{}, err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return domain.Reservation{}, err
	}
	if n == 0 {
		// MySQL reports 0 for an unchanged row, so tell that apart from a missing one
		ok, err := r.Exists(ctx, res.ID)
		if err != nil {
			return domain.Reservation{}, err
		}
		if !ok {
			return domain.Reservation{}, fmt.Errorf("%w: cannot update reservation %s", domain.ErrNotFound, res.ID)
		}
	}
	return res, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (domain.Reservation, error) {
	if err := checkID(id); err != nil {
		return domain.Reservation{}, err
	}
	res, err := scanReservation(r.db.QueryRowContext(ctx, selectReservationSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Reservation{}, fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	return res, err
}

func (r *Repo) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, selectAllReservationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Reservation, 0, 64)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	out, err := r.db.ExecContext(ctx, deleteReservationSQL, id)
	if err != nil {
		return false, err
	}
	n, err := out.RowsAffected()
	return n > 0, err
}

func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	var ok bool
	err := r.db.QueryRowContext(ctx, existsReservationSQL, id).Scan(&ok)
	return ok, err
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countReservationsSQL).Scan(&n)
	return n, err
}

func (r *Repo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, clearReservationsSQL)
	return err
}
