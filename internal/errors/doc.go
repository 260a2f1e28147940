// Package errors provides structured, actionable error messages for the
// use CLI.
//
// Each error carries:
//   - A unique code (e.g., "L005") that maps to a registered template
//   - A short message and a detailed explanation
//   - The offending location (file, line, column) with surrounding lines
//   - A fix suggestion and a documentation link
//
// # Error Categories
//
// Errors are organized into categories:
//   - lint: Commit message violations
//   - publish: Module packaging and registry upload failures
//   - config: Problems with use.json
//   - cli: Command invocation errors (bad flags, missing arguments)
//
// # Error Codes
//
// Each error has a unique code that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Usage
//
//	err := errors.New("L005").
//	    WithLocation(".git/COMMIT_EDITMSG", 1, 73).
//	    WithSuggestion("Keep the header at or under the configured limit")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR L005: Commit header too long
//	//
//	//   .git/COMMIT_EDITMSG:1:73
//	//
//	//   → 1 │ feat(storage): add persistence, notifications, a kitchen sink
//	//       │                                                         ^
//	//
//	//   Hint: Keep the header at or under the configured limit
//	//
//	//   Learn more: https://bymeisam.github.io/use/errors/L005
package errors
