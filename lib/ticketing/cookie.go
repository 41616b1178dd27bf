// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketing

// CookieLength is the size of a reservation cookie in bytes.
const CookieLength = 48

// Cookie is the secret returned with a reservation and required to
// redeem it. Every byte is printable ASCII (>= minCookieChar).
type Cookie [CookieLength]byte

// minCookieChar is the lowest byte value a cookie may contain ('!').
// The generation formula reduces modulo primes below 90, so every
// cookie byte lands in the printable range 33..121.
const minCookieChar = 33

// smallPrimes are the first 24 primes. The first cookie half indexes
// them directly; the second half reuses them shifted by 24.
var smallPrimes = [CookieLength / 2]uint64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41,
	43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89,
}

// largePrimes are fixed multipliers for the second cookie half,
// indexed 24..47. The first 24 entries keep the table aligned with
// the cookie byte index and are never read.
var largePrimes = [CookieLength]uint64{
	15485863, 49979687, 86028121,
	104395303, 122949829, 160481183,
	160481219, 198491317, 198491329,
	236887691, 256203161, 256203221,
	295075147, 295075153, 314606869,
	314606891, 334214459, 334214467,
	353868013, 353868019, 373587883,
	373587911, 393342739, 393342743,
	413158511, 413158523, 433024223,
	433024253, 452930459, 452930477,
	472882027, 472882049, 492876847,
	492876863, 512927357, 512927377,
	533000389, 533000401, 553105243,
	553105253, 573259391, 573259433,
	593441843, 593441861, 613651349,
	613651369, 633910099, 633910111,
}

// GenerateCookie maps a reservation ID to its cookie. The mapping is
// deterministic and side-effect-free: the first half is the ID reduced
// modulo the small primes, the second half mixes the successor ID with
// the large-prime multipliers before reducing. The id+1 addition
// deliberately wraps in uint32 to stay bit-compatible with recorded
// protocol traces.
func GenerateCookie(reservationID uint32) Cookie {
	var cookie Cookie
	for i := 0; i < CookieLength/2; i++ {
		cookie[i] = byte(uint64(reservationID)%smallPrimes[i]) + minCookieChar
	}
	for i := CookieLength / 2; i < CookieLength; i++ {
		mixed := uint64(reservationID+1) * largePrimes[i]
		cookie[i] = byte(mixed%smallPrimes[i-CookieLength/2]) + minCookieChar
	}
	return cookie
}
