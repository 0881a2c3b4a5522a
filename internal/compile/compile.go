package compile

// Compile runs the whole pass: construct and filter the declared entries,
// enforce cross-field invariants, order deterministically, and render.
// Fail-closed: any error yields empty output, never a partial document.
func Compile(src Source) (string, error) {
	entries, err := Collect(src)
	if err != nil {
		return "", err
	}
	if err := Validate(entries); err != nil {
		return "", err
	}
	Order(entries)
	return Render(entries, src.GlobalExtra), nil
}
