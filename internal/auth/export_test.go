package auth

// AbsentHash exposes the hash compared against for unknown emails.
func AbsentHash() string {
	return absentUser.Password
}
