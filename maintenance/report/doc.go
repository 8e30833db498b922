/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package report renders the results of maintenance runs for people.

# Usage

	results := maintenance.RunAll(ctx, runner, enlistments, factory, 4)
	out, failed := report.Markdown(results)
	fmt.Print(out)
	if failed {
		os.Exit(1)
	}

# Report Format

Markdown renders one table row per result, in input order, with the
enlistment root, the step, its outcome, the duration rounded to the
millisecond and the error message. Failed rows are marked with ❌, and a
summary line with the success count follows the table.
*/
package report
