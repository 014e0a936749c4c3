// SPDX-License-Identifier: Apache-2.0

package similarity

import (
	"regexp"
	"strconv"
	"strings"
)

var slashDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)

// NormalizeDate strips leading zeros from the month and day of an M/D/YYYY
// prefix so "08/11/2025" and "8/11/2025" compare equal. Anything else is
// returned trimmed. The function is idempotent.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	m := slashDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	return strconv.Itoa(month) + "/" + strconv.Itoa(day) + "/" + m[3]
}
