package mysql

// Room rows exist only to serialize booking creation: CreateBooking locks
// the room row FOR UPDATE before its overlap check, which closes the
// check-then-insert race without relying on gap locks.
const lockRoomSQL = `SELECT id FROM rooms WHERE id = ? FOR UPDATE`

// Half-open [check_in, check_out) overlap: neither stay entirely before the
// other. Expired bookings no longer block.
const countOverlapSQL = `
SELECT COUNT(*)
FROM bookings
WHERE room_id = ?
  AND payment_status IN ('pending', 'paid')
  AND check_in < ?
  AND ? < check_out
`

const insertBookingSQL = `
INSERT INTO bookings
  (id, room_id, check_in, check_out, guests, breakfast, total_euros,
   customer_name, customer_email, customer_phone, payment_status, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const markPaidSQL = `
UPDATE bookings SET payment_status = 'paid'
WHERE id = ? AND payment_status = 'pending'
`

const expireBookingSQL = `
UPDATE bookings SET payment_status = 'expired'
WHERE id = ? AND payment_status = 'pending'
`

const getStatusSQL = `SELECT payment_status FROM bookings WHERE id = ?`

const getBookingSQL = `
SELECT id, room_id, check_in, check_out, guests, breakfast, total_euros,
       customer_name, customer_email, customer_phone, payment_status, created_at
FROM bookings
WHERE id = ?
`

// Public calendar feed: stays only, no guest columns.
const listBookedIntervalsSQL = `
SELECT room_id, check_in, check_out
FROM bookings
WHERE payment_status IN ('pending', 'paid')
ORDER BY check_in, room_id
`

const listStalePendingSQL = `
SELECT id FROM bookings
WHERE payment_status = 'pending' AND created_at < ?
ORDER BY created_at
`

const insertReviewSQL = `
INSERT INTO reviews (name, country, comment, rating)
VALUES (?, ?, ?, ?)
`

const getReviewSQL = `
SELECT id, name, country, comment, rating, created_at
FROM reviews
WHERE id = ?
`

const listReviewsSQL = `
SELECT id, name, country, comment, rating, created_at
FROM reviews
ORDER BY created_at DESC, id DESC
LIMIT ?
`
