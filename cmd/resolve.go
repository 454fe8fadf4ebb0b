package cmd

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url>...",
		Short: "Resolve page URLs to image URLs",
		Long: `Resolves every argument concurrently and prints one tab-separated line
per URL: the input, then either the service and image URL or the failure reason.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			res := appInstance.Resolver()
			out := cmd.OutOrStdout()

			var (
				mu     sync.Mutex
				failed int
			)
			for _, url := range args {
				res.ResolveAsync(cmd.Context(), url,
					func(imageURL, service string) {
						mu.Lock()
						defer mu.Unlock()
						fmt.Fprintf(out, "%s\t%s\t%s\n", url, service, imageURL)
					},
					func(reason string) {
						mu.Lock()
						defer mu.Unlock()
						failed++
						fmt.Fprintf(out, "%s\terror\t%s\n", url, reason)
					},
				)
			}
			res.Wait()

			if failed > 0 {
				return fmt.Errorf("%d of %d URLs could not be resolved", failed, len(args))
			}
			return nil
		},
	}
}
