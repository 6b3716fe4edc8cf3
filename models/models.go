// Package models defines the database schema.
//
// 1. users - cookie-authenticated accounts
// 2. refresh_tokens - hashed long-lived tokens backing session refresh
// 3. interviews - one prepared interview per row, with its question list
// 4. feedbacks - the scored assessment derived from a finished session
package models
