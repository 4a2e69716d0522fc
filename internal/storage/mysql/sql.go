package mysql

const reservationColumns = "id, guest_name, guest_email, check_in, check_out, room_type, total_price, status, created_at"

const insertReservationSQL = `
INSERT INTO reservations
  (` + reservationColumns + `)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateReservationSQL = `
UPDATE reservations SET
  guest_name  = ?,
  guest_email = ?,
  check_in    = ?,
  check_out   = ?,
  room_type   = ?,
  total_price = ?,
  status      = ?
WHERE id = ?
`

const selectReservationSQL = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`

// Ordered so snapshots are stable across calls.
const selectAllReservationsSQL = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY check_in, id`

const deleteReservationSQL = `DELETE FROM reservations WHERE id = ?`

const existsReservationSQL = `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)`

const countReservationsSQL = `SELECT COUNT(*) FROM reservations`

const clearReservationsSQL = `DELETE FROM reservations`
