package configcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/papercomputeco/jarvis/cmd/jarvis/config"
)

func execute(args ...string) (string, error) {
	cmd := configcmder.NewConfigCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "jarvis-config-test-*")
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		// A local .jarvis dir takes precedence over the home directory.
		err = os.MkdirAll(filepath.Join(tmpDir, ".jarvis"), 0o755)
		Expect(err).NotTo(HaveOccurred())

		err = os.Chdir(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		err := os.Chdir(origDir)
		Expect(err).NotTo(HaveOccurred())
		os.RemoveAll(tmpDir)
	})

	Describe("set subcommand", func() {
		It("writes the value to config.toml", func() {
			out, err := execute("set", "model.provider", "anthropic")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("model.provider"))

			data, err := os.ReadFile(filepath.Join(tmpDir, ".jarvis", "config.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`provider = "anthropic"`))
		})

		It("rejects unknown keys", func() {
			_, err := execute("set", "invalid_key", "value")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unknown config key"))
		})

		It("requires exactly two arguments", func() {
			_, err := execute("set", "model.provider")
			Expect(err).To(HaveOccurred())
		})

		It("rejects zero arguments", func() {
			_, err := execute("set")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid uint values", func() {
			_, err := execute("set", "memory.top_k", "not-a-number")
			Expect(err).To(HaveOccurred())
		})

		It("rejects invalid bool values", func() {
			_, err := execute("set", "storage.watch", "sometimes")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			_, err := execute("set", "memory.top_k", "7")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("get", "memory.top_k")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("7"))
		})

		It("reports the default for an unset key", func() {
			out, err := execute("get", "assistant.name")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Jarvis"))
		})

		It("rejects unknown keys", func() {
			_, err := execute("get", "invalid_key")
			Expect(err).To(HaveOccurred())
		})

		It("requires exactly one argument", func() {
			_, err := execute("get")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("list subcommand", func() {
		It("lists every key when no config exists", func() {
			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("storage.provider"))
			Expect(out).To(ContainSubstring("eventstream.topic"))
		})

		It("shows values from the config file", func() {
			_, err := execute("set", "model.provider", "openai")
			Expect(err).NotTo(HaveOccurred())

			out, err := execute("list")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Using config file"))
			Expect(out).To(MatchRegexp(`model\.provider\s+= "openai"`))
		})

		It("rejects any arguments", func() {
			_, err := execute("list", "extra")
			Expect(err).To(HaveOccurred())
		})
	})
})
