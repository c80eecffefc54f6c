package main

// ConfigCmd prints the configuration after defaults and environment
// overrides are applied.
type ConfigCmd struct{}

func (cmd ConfigCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	_, err = g.Stdout.Write(cfg.Encode())
	return err
}
