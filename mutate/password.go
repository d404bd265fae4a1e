package mutate

// HashPassword applies the stored password transform: reverse the string,
// then shift each character up by its position plus one. "pw" becomes "xr".
//
// The transform is reversible (see RevealPassword) and is NOT a credential
// hash. It is kept only so stored values match existing data; replace it with
// a one-way hash before exposing the service to real users.
func HashPassword(plain string) string {
	r := []rune(plain)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	for i := range r {
		r[i] += rune(i + 1)
	}
	return string(r)
}

// RevealPassword inverts HashPassword.
func RevealPassword(stored string) string {
	r := []rune(stored)
	for i := range r {
		r[i] -= rune(i + 1)
	}
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
