package calendar

// PreviewCap bounds the number of dates a preview can emit. It guards
// against unbounded generation when no end date is given.
const PreviewCap = 500

// GeneratePreview produces the ordered installment dates for a schedule.
// It is pure and must emit exactly the dates the execution engine will later
// realize for matching inputs.
//
// endDate may be empty, in which case generation runs until PreviewCap.
// A start date after the end date yields an empty sequence, not an error.
func GeneratePreview(startDate, endDate string, freq Frequency) ([]string, error) {
	if _, err := Parse(startDate); err != nil {
		return nil, err
	}
	if endDate != "" {
		if _, err := Parse(endDate); err != nil {
			return nil, err
		}
	}
	if _, err := ParseFrequency(string(freq)); err != nil {
		return nil, err
	}

	dates := []string{}
	if endDate != "" && Compare(startDate, endDate) > 0 {
		return dates, nil
	}

	current := startDate
	for len(dates) < PreviewCap {
		if endDate != "" && Compare(current, endDate) > 0 {
			break
		}
		dates = append(dates, current)

		next, err := AddStep(current, freq)
		if err != nil {
			return nil, err
		}
		current = next
	}

	return dates, nil
}
