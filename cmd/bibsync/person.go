package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibsync/internal/author"
	"github.com/matsen/bibsync/internal/config"
	"github.com/matsen/bibsync/internal/reference"
	"github.com/matsen/bibsync/internal/storage"
)

var personORCID string

func init() {
	personAddCmd.Flags().StringVar(&personORCID, "orcid", "", "ORCID identifier")
	personCmd.AddCommand(personAddCmd, personListCmd)
	rootCmd.AddCommand(personCmd)
}

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage known persons",
	Long: `Manage the persons known to the library.

Imported author and editor names are matched against known persons; a
match links the publication to that person's id.`,
}

var personAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a known person",
	Long: `Add a known person. The name is given in BibTeX form.

Examples:
  bibsync person add "Matsen, Frederick A."
  bibsync person add "van Beethoven, Ludwig" --orcid 0000-0002-1825-0097`,
	Args: cobra.ExactArgs(1),
	RunE: runPersonAdd,
}

var personListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known persons",
	Args:  cobra.NoArgs,
	RunE:  runPersonList,
}

func runPersonAdd(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	names, err := author.ParseNameList(args[0])
	if err != nil {
		exitWithError(ExitDataError, "parsing name: %v", err)
	}
	if len(names) != 1 {
		exitWithError(ExitError, "expected one name, got %d", len(names))
	}
	n := names[0]

	path := config.PersonsPath(repoRoot)
	people, err := storage.ReadPersons(path)
	if err != nil {
		exitWithError(ExitDataError, "reading persons: %v", err)
	}

	if p, found, _ := author.Roster(people).FindPerson(n); found {
		exitWithError(ExitDataError, "%s is already known as person %d", p.DisplayName(), p.ID)
	}

	var maxID int64
	for _, p := range people {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	p := reference.Person{
		ID:    maxID + 1,
		First: n.First,
		Von:   n.Von,
		Last:  n.Last,
		Jr:    n.Jr,
		ORCID: personORCID,
	}
	if err := storage.WritePersons(path, append(people, p)); err != nil {
		exitWithError(ExitError, "writing persons: %v", err)
	}

	if humanOutput {
		fmt.Printf("Added %s\n", formatPersonHuman(p))
	} else {
		outputJSON(p)
	}
	return nil
}

func runPersonList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	people, err := storage.ReadPersons(config.PersonsPath(repoRoot))
	if err != nil {
		exitWithError(ExitDataError, "reading persons: %v", err)
	}

	if humanOutput {
		if len(people) == 0 {
			fmt.Println("No persons known")
		}
		for _, p := range people {
			fmt.Println(formatPersonHuman(p))
		}
	} else {
		if people == nil {
			people = []reference.Person{}
		}
		outputJSON(people)
	}
	return nil
}
