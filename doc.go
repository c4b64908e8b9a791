// Package main runs the EkklesiaSoft API: a multi-tenant church administration backend
// whose users, roles and permissions are checked on every request and kept within
// their own tenant.
package main
