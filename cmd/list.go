package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"assetmaid.dev/pkg/assetmaid/internal/domain"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

const (
	sortFlagName        = "sort"
	orderFlagName       = "order"
	kindFlagName        = "kind"
	reachFlagName       = "reach"
	interactiveFlagName = "interactive"
)

// listingFlags are the flags shared by the ranked listing commands.
type listingFlags struct {
	sort        string
	order       string
	limit       int
	kinds       []string
	reach       string
	interactive bool
}

func (f *listingFlags) register(cmd *cobra.Command, defaultReach string) {
	cmd.Flags().StringVarP(&f.sort, sortFlagName, "s", string(m.RankByCost), "sort key: cost, path, category or creator")
	cmd.Flags().StringVar(&f.order, orderFlagName, "desc", "sort order: asc or desc")
	cmd.Flags().IntVarP(&f.limit, limitFlagName, "n", 0, "show at most this many entries (0 for all)")
	cmd.Flags().StringArrayVarP(&f.kinds, kindFlagName, "k", nil, "only show resources of this kind: texture, material or other (can be repeated)")
	cmd.Flags().BoolVarP(&f.interactive, interactiveFlagName, "i", false, "browse the listing interactively on a terminal")

	if defaultReach != "" {
		cmd.Flags().StringVar(&f.reach, reachFlagName, defaultReach, "which resources: unreachable, reachable or all")
	}
}

func (f *listingFlags) args(title string) (domain.ListArgs, error) {
	key, err := domain.ParseRankKey(f.sort)
	if err != nil {
		return domain.ListArgs{}, err
	}

	order, err := domain.ParseSortOrder(f.order)
	if err != nil {
		return domain.ListArgs{}, err
	}

	reach, err := parseReachability(f.reach)
	if err != nil {
		return domain.ListArgs{}, err
	}

	kinds, err := parseKinds(f.kinds)
	if err != nil {
		return domain.ListArgs{}, err
	}

	return domain.ListArgs{
		Title:       title,
		Key:         key,
		Order:       order,
		Limit:       f.limit,
		Filter:      domain.EntryFilter{Reachability: reach, Kinds: kinds},
		Interactive: f.interactive,
	}, nil
}

func parseReachability(value string) (domain.Reachability, error) {
	reach := domain.Reachability(strings.ToLower(strings.TrimSpace(value)))

	switch reach {
	case domain.ReachabilityAll, domain.ReachabilityReachable, domain.ReachabilityUnreachable:
		return reach, nil
	case "":
		return domain.ReachabilityAll, nil
	}

	return "", fmt.Errorf("unknown reach %q (want unreachable, reachable or all)", value)
}

func parseKinds(values []string) ([]m.ResourceKind, error) {
	kinds := make([]m.ResourceKind, 0, len(values))

	for _, value := range values {
		kind := m.ResourceKind(strings.ToLower(strings.TrimSpace(value)))

		switch kind {
		case m.KindTexture, m.KindMaterial, m.KindOther:
			kinds = append(kinds, kind)
		default:
			return nil, fmt.Errorf("unknown kind %q (want texture, material or other)", value)
		}
	}

	return kinds, nil
}

func listTitle(reach domain.Reachability) string {
	switch reach {
	case domain.ReachabilityReachable:
		return "Referenced resources"
	case domain.ReachabilityUnreachable:
		return "Unreferenced resources"
	}

	return "All resources"
}

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	flags := &listingFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unreferenced resources",
		Long: `List the resources no root document references, ranked by estimated cost.
Use --reach to list referenced resources or everything instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args, err := flags.args("")
			if err != nil {
				return err
			}

			args.Title = listTitle(args.Filter.Reachability)

			wf, err := currentWorkflow(cmd)
			if err != nil {
				return err
			}

			return wf.List(cmd.Context(), args)
		},
	}

	flags.register(cmd, string(domain.ReachabilityUnreachable))

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
