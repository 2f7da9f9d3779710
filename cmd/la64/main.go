// Command la64 boots an LA64 image: <executable> <boot-image-path>.
package main

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/urfave/cli.v2"

	"github.com/Lightweight-Architecture/la64/vm"
)

var buildVersion = "dev"

func main() {
	app := &cli.App{
		Name:      "la64",
		Usage:     "run an LA64 boot image",
		UsageText: "la64 [command] <boot-image-path> [flags]",
		Version:   buildVersion,
		Writer:    os.Stderr,
		Flags:     runFlags(),
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "boot and run an image (the default command)",
				Flags:  runFlags(),
				Action: runAction,
			},
			{
				Name:  "version",
				Usage: "print the la64 version",
				Action: func(c *cli.Context) error {
					fmt.Println(buildVersion)
					return nil
				},
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		log.Printf("[boot] %v", err)
		os.Exit(1)
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{Name: "mem-size", Usage: "guest RAM size in bytes", Value: vm.DefaultMemorySize},
		&cli.Uint64Flag{Name: "virtual-freq", Usage: "timer virtual frequency in Hz", Value: vm.DefaultVirtualFreq},
		&cli.BoolFlag{Name: "disasm", Usage: "print each faulting instruction before halting"},
		&cli.BoolFlag{Name: "framebuffer", Usage: "enable the optional framebuffer device"},
		&cli.BoolFlag{Name: "uart", Usage: "attach host stdin/stdout to the UART", Value: true},
	}
}

func runAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		cli.ShowAppHelp(c)
		return cli.Exit("missing boot image path", 1)
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("[boot] cannot read image %q: %v", path, err), 1)
	}

	m, err := vm.NewMachine(vm.MachineConfig{
		MemorySize:   c.Uint64("mem-size"),
		VirtualFreq:  c.Uint64("virtual-freq"),
		Framebuffer:  c.Bool("framebuffer"),
		AttachUART:   c.Bool("uart"),
		DisasmFaults: c.Bool("disasm"),
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("[boot] %v", err), 1)
	}

	if err := m.Boot(image); err != nil {
		return cli.Exit(fmt.Sprintf("[boot] %v", err), 1)
	}

	m.Run()
	return nil
}
