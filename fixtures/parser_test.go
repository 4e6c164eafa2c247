package fixtures

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Structured parser", func() {
	DescribeTable("TOML front-end",
		func(content string, validate func(tc *TestCase)) {
			tc, err := ParseTOML([]byte(content))
			Expect(err).NotTo(HaveOccurred())
			validate(tc)
		},
		Entry("empty fixture keeps defaults", ``, func(tc *TestCase) {
			Expect(tc.Run.Bin.Kind).To(Equal(BinUnset))
			Expect(tc.Run.StderrToStdout).To(BeFalse())
			Expect(tc.Run.ExpectedStatus()).To(Equal(CommandStatus{Kind: StatusSuccess}))
		}),
		Entry("empty env table keeps defaults", `[env]`, func(tc *TestCase) {
			Expect(tc.Run.Env.Inherits()).To(BeTrue())
			Expect(tc.Run.Env.Add).To(BeEmpty())
		}),
		Entry("bin.name", `bin.name = 'cmd'`, func(tc *TestCase) {
			Expect(tc.Run.Bin).To(Equal(BinFromName("cmd")))
		}),
		Entry("bin.path", `bin.path = '/usr/bin/cmd'`, func(tc *TestCase) {
			Expect(tc.Run.Bin).To(Equal(BinFromPath("/usr/bin/cmd")))
		}),
		Entry("args as explicit list", `args = ["arg1", "arg with space"]`, func(tc *TestCase) {
			Expect(tc.Run.Args).To(Equal([]string{"arg1", "arg with space"}))
		}),
		Entry("args as shell-quoted string", `args = "arg1 'arg with space'"`, func(tc *TestCase) {
			Expect(tc.Run.Args).To(Equal([]string{"arg1", "arg with space"}))
		}),
		Entry("status by name", `status = 'failed'`, func(tc *TestCase) {
			Expect(tc.Run.ExpectedStatus()).To(Equal(CommandStatus{Kind: StatusFailed}))
		}),
		Entry("status by code", `status.code = 42`, func(tc *TestCase) {
			Expect(tc.Run.ExpectedStatus()).To(Equal(CommandStatus{Kind: StatusCode, Code: 42}))
		}),
		Entry("env additions and removals", `
[env]
inherit = false
remove = ["HOME"]

[env.add]
LANG = "C"
`, func(tc *TestCase) {
			Expect(tc.Run.Env.Inherits()).To(BeFalse())
			Expect(tc.Run.Env.Add).To(Equal(map[string]string{"LANG": "C"}))
			Expect(tc.Run.Env.Remove).To(Equal([]string{"HOME"}))
		}),
		Entry("stderr-to-stdout and binary flags", `
stderr-to-stdout = true
binary = true
`, func(tc *TestCase) {
			Expect(tc.Run.StderrToStdout).To(BeTrue())
			Expect(tc.Run.Binary).To(BeTrue())
		}),
		Entry("timeout duration", `timeout = "1m30s"`, func(tc *TestCase) {
			Expect(tc.Run.Timeout).To(Equal(90 * time.Second))
		}),
		Entry("filesystem overrides", `
[fs]
cwd = "sub"
sandbox = true
`, func(tc *TestCase) {
			Expect(tc.FS.Cwd).To(Equal("sub"))
			Expect(tc.FS.Sandboxed()).To(BeTrue())
		}),
	)

	DescribeTable("YAML front-end",
		func(content string, validate func(tc *TestCase)) {
			tc, err := ParseYAML([]byte(content))
			Expect(err).NotTo(HaveOccurred())
			validate(tc)
		},
		Entry("bin mapping", `
bin:
  name: cmd
`, func(tc *TestCase) {
			Expect(tc.Run.Bin).To(Equal(BinFromName("cmd")))
		}),
		Entry("bare bin name", `bin: cmd`, func(tc *TestCase) {
			Expect(tc.Run.Bin).To(Equal(BinFromName("cmd")))
		}),
		Entry("bare bin path", `bin: /usr/bin/cmd`, func(tc *TestCase) {
			Expect(tc.Run.Bin).To(Equal(BinFromPath("/usr/bin/cmd")))
		}),
		Entry("args as list", `
args:
  - arg1
  - arg with space
`, func(tc *TestCase) {
			Expect(tc.Run.Args).To(Equal([]string{"arg1", "arg with space"}))
		}),
		Entry("args as shell-quoted string", `args: "arg1 'arg with space'"`, func(tc *TestCase) {
			Expect(tc.Run.Args).To(Equal([]string{"arg1", "arg with space"}))
		}),
		Entry("status code shorthand", `status: 42`, func(tc *TestCase) {
			Expect(tc.Run.ExpectedStatus()).To(Equal(CommandStatus{Kind: StatusCode, Code: 42}))
		}),
		Entry("status mapping", `
status:
  code: 7
`, func(tc *TestCase) {
			Expect(tc.Run.ExpectedStatus()).To(Equal(CommandStatus{Kind: StatusCode, Code: 7}))
		}),
		Entry("full fixture", `
bin:
  name: myapp
args: "greet 'Hello World'"
stderr-to-stdout: true
timeout: 30s
env:
  inherit: false
  add:
    LANG: C
fs:
  cwd: sub
`, func(tc *TestCase) {
			Expect(tc.Run.Bin).To(Equal(BinFromName("myapp")))
			Expect(tc.Run.Args).To(Equal([]string{"greet", "Hello World"}))
			Expect(tc.Run.StderrToStdout).To(BeTrue())
			Expect(tc.Run.Timeout).To(Equal(30 * time.Second))
			Expect(tc.Run.Env.Inherits()).To(BeFalse())
			Expect(tc.Run.Env.Add).To(Equal(map[string]string{"LANG": "C"}))
			Expect(tc.FS.Cwd).To(Equal("sub"))
		}),
	)

	DescribeTable("parse failures",
		func(parse func([]byte) (*TestCase, error), content string, substring string) {
			_, err := parse([]byte(content))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(substring))
		},
		Entry("bad toml status name", ParseTOML, `status = 'sometimes'`, "expected an exit code"),
		Entry("toml bin with both variants", ParseTOML, `bin = { name = 'cmd', path = '/usr/bin/cmd' }`, "mutually exclusive"),
		Entry("bad yaml status name", ParseYAML, `status: sometimes`, "expected an exit code"),
		Entry("bad yaml timeout", ParseYAML, `timeout: soon`, "invalid timeout"),
	)
})
