package fints_test

import (
	"testing"

	fints "github.com/reoring/fints"
)

var (
	referenceMessage = fints.NewContainer("ReferenceMessage",
		fints.A("dialogue_id", fints.ID()),
		fints.A("message_number", fints.Num(fints.MaxLength(4))),
	)

	hnhbk3 = fints.MustSchema("HNHBK3", "Nachrichtenkopf",
		fints.A("message_size", fints.Dig(fints.Length(12))),
		fints.A("hbci_version", fints.Num(fints.MaxLength(3))),
		fints.A("dialogue_id", fints.ID()),
		fints.A("message_number", fints.Num(fints.MaxLength(4))),
		fints.A("reference_message", fints.Group(referenceMessage, fints.Optional())),
	)

	response = fints.NewContainer("Response",
		fints.A("code", fints.Dig(fints.Length(4))),
		fints.A("reference_element", fints.AN(fints.MaxLength(7), fints.Optional())),
		fints.A("text", fints.AN(fints.MaxLength(80))),
		fints.A("parameters", fints.AN(fints.MaxLength(35), fints.Count(0, 10), fints.Optional())),
	)

	hirmg2 = fints.MustSchema("HIRMG2", "Rückmeldungen zur Gesamtnachricht",
		fints.A("responses", fints.Group(response, fints.Count(1, 99))),
	)

	hnhbs1 = fints.MustSchema("HNHBS1", "Nachrichtenabschluss",
		fints.A("message_number", fints.Num(fints.MaxLength(4))),
	)
)

func headerValues() fints.Values {
	return fints.Values{
		"message_size":   "000000000123",
		"hbci_version":   "300",
		"dialogue_id":    "ABC123",
		"message_number": 1,
	}
}

func tokens(t *testing.T, s *fints.Segment) []fints.TokenGroup {
	t.Helper()
	groups, err := s.Tokens()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return groups
}

func equalGroups(a, b []fints.TokenGroup) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

type fakeDescriptor struct{}

func (fakeDescriptor) Required() bool { return true }
func (fakeDescriptor) MinCount() int  { return 1 }
func (fakeDescriptor) MaxCount() int  { return 1 }
func (fakeDescriptor) Doc() string    { return "" }
