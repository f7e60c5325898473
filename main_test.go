package main

import "testing"

func TestRunCommandsWithoutDatabase(t *testing.T) {
	for _, command := range []string{"version", "help"} {
		if err := run(command); err != nil {
			t.Errorf("%s: %s", command, err)
		}
	}
}
