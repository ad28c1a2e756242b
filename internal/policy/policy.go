// Package policy holds the stateless eligibility predicates: identity
// document (SSN) format, SSN-derived age, and payment token format. All
// functions are pure and total.
package policy

import "time"

// ValidSSN accepts an 11-digit numeric string in DDMMYNNNNNN form: the
// first two digits are a day of month (1-31), the next two a month (1-12).
// No calendar validation beyond the ranges; day 31 of a 30-day month
// passes.
func ValidSSN(ssn string) bool {
	if len(ssn) != 11 || !numeric(ssn) {
		return false
	}
	day := atoi2(ssn[0:2])
	month := atoi2(ssn[2:4])
	if day < 1 || day > 31 {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	return true
}

// DeriveAge estimates the holder's age in whole years from the two-digit
// birth year at positions 4-5 of the SSN. The comparison is year-only with
// a century-rollover heuristic: when the current two-digit year is below
// the birth two-digit year, a century is added. Month and day are ignored.
func DeriveAge(ssn string, today time.Time) int {
	birth := atoi2(ssn[4:6])
	current := today.Year() % 100
	if current < birth {
		current += 100
	}
	return current - birth
}

// ValidCreditNumber accepts a 16-digit numeric string. No Luhn or issuer
// check is performed.
func ValidCreditNumber(credit string) bool {
	return len(credit) == 16 && numeric(credit)
}

func numeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoi2 converts a two-digit ASCII numeric substring. Callers guarantee the
// input is numeric.
func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
