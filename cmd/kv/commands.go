package kv

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/slotkv/lib/store"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Stores a key-value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			if err := rpcStore.Put(key, value); err != nil {
				return fmt.Errorf("failed to store value: %w", err)
			}
			fmt.Printf("%s = %s\n", key, value)
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Retrieves the value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := rpcStore.Get(key)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("key not found: %s", key)
			} else if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "delete [key]",
		Short: "Deletes a key-value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := rpcStore.Delete(key); err != nil {
				return fmt.Errorf("failed to delete key %s: %w", key, err)
			}
			fmt.Printf("deleted: %s\n", key)
			return nil
		},
	}
	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Runs a put, get, delete round against the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Running tests...")
			if err := runScenario(rpcStore, func(step string, detail string) {
				fmt.Printf("%s: OK%s\n", step, detail)
			}); err != nil {
				return err
			}
			fmt.Println("All tests passed!")
			return nil
		},
	}
)

const (
	scenarioKey   = "test_key"
	scenarioValue = "test_value"
)

// runScenario stores, reads and deletes a key and checks that it is gone afterwards.
// report is called after every successful step.
func runScenario(s store.IStore, report func(step, detail string)) error {
	// 1. put
	if err := s.Put(scenarioKey, scenarioValue); err != nil {
		return fmt.Errorf("1. store value: %w", err)
	}
	report("1. Store value", "")

	// 2. get
	value, err := s.Get(scenarioKey)
	if err != nil {
		return fmt.Errorf("2. retrieve value: %w", err)
	}
	if value != scenarioValue {
		return fmt.Errorf("2. retrieve value: expected %q, got %q", scenarioValue, value)
	}
	report("2. Retrieve value", fmt.Sprintf(" (%s)", value))

	// 3. delete
	if err := s.Delete(scenarioKey); err != nil {
		return fmt.Errorf("3. delete value: %w", err)
	}
	report("3. Delete value", "")

	// 4. get after delete
	if _, err := s.Get(scenarioKey); !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("4. value still present after delete: %v", err)
	}
	report("4. Value gone", "")

	return nil
}
