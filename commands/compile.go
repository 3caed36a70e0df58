package commands

import (
	"fmt"
	"os"

	"github.com/dmklee/rl-in-dmlab/compile"
	"github.com/dmklee/rl-in-dmlab/dmlab"
	"github.com/dmklee/rl-in-dmlab/headless"
	"github.com/dmklee/rl-in-dmlab/mapstore"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func CompileCommand() *cobra.Command {
	var mapsDir string
	var redisAddr string
	var redisPrefix string
	var tmpRoot string
	var outDir string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Precompile stored map definitions into level files",
		RunE: func(cmd *cobra.Command, args []string) error {
			var store mapstore.Store = mapstore.NewDirStore(mapsDir)
			if redisAddr != "" {
				client := redis.NewClient(&redis.Options{
					Addr: redisAddr,
				})
				defer client.Close()
				store = mapstore.NewRedisStore(client, redisPrefix)
			}

			config, err := environmentConfig()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(tmpRoot, os.ModePerm); err != nil {
				return err
			}
			engine := headless.NewEngine(tmpRoot)
			defer engine.Close()

			compiler := &compile.Compiler{
				Store:   store,
				Env:     dmlab.NewEnvironment(config, engine.Factory()),
				TmpRoot: tmpRoot,
				OutDir:  outDir,
			}

			ctx, stop := interruptContext()
			defer stop()

			paths, err := compiler.Run(ctx)
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "compiled %s\n", p)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&mapsDir, "maps", "to_be_compiled", "Folder of map definition files")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Read map definitions from the redis server at this address instead")
	cmd.Flags().StringVar(&redisPrefix, "redis-prefix", "dmlab", "Key prefix of the map definitions in redis")
	cmd.Flags().StringVar(&tmpRoot, "tmp", os.TempDir(), "Folder the simulator creates its work folder in")
	cmd.Flags().StringVar(&outDir, "out", "bsp_files", "Folder receiving the compiled level files")
	return cmd
}
