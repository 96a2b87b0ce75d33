package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

const testMap = `lat0 47.397742, lon0 8.545594
posX,posY,posZ,halfSizeX,halfSizeY,halfSizeZ
0.0,0.0,5.0,2.0,2.0,1.0
20.0,20.0,10.0,3.0,3.0,5.0
`

func writeTestMap(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colliders.csv")
	test.That(t, os.WriteFile(path, []byte(testMap), 0o600), test.ShouldBeNil)
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	err := app.Run(append([]string{"freespace"}, args...))
	return out.String(), err
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestInfoCommand(t *testing.T) {
	path := writeTestMap(t)
	out, err := runApp(t, "--map", path, "info")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "home: 47.397742, 8.545594")
	test.That(t, out, test.ShouldContainSubstring, "obstacles: 2")
	test.That(t, out, test.ShouldContainSubstring, "north [-2.00, 23.00]")
	test.That(t, out, test.ShouldContainSubstring, "prune radius: 6.00")
	test.That(t, out, test.ShouldContainSubstring, "Type: Obstacle")
}

func TestSampleCommand(t *testing.T) {
	path := writeTestMap(t)
	out, err := runApp(t, "--map", path, "sample", "--count", "50", "--seed", "7")
	test.That(t, err, test.ShouldBeNil)
	lines := nonEmptyLines(out)
	test.That(t, len(lines), test.ShouldBeGreaterThan, 0)
	test.That(t, len(lines), test.ShouldBeLessThanOrEqualTo, 50)
	for _, line := range lines {
		test.That(t, strings.Split(line, ","), test.ShouldHaveLength, 3)
	}

	// same seed, same output
	again, err := runApp(t, "--map", path, "sample", "--count", "50", "--seed", "7")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldEqual, out)
}

func TestSampleIndexBackends(t *testing.T) {
	path := writeTestMap(t)
	kd, err := runApp(t, "--map", path, "sample", "--seed", "3")
	test.That(t, err, test.ShouldBeNil)
	for _, index := range []string{"rtree", "grid"} {
		got, err := runApp(t, "--map", path, "sample", "--seed", "3", "--index", index)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, kd)
	}

	_, err = runApp(t, "--map", path, "sample", "--index", "btree")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unknown index")
}

func TestSampleToFile(t *testing.T) {
	mapPath := writeTestMap(t)
	outPath := filepath.Join(t.TempDir(), "samples.csv")
	out, err := runApp(t, "--map", mapPath, "sample", "-n", "20", "--out", outPath)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, outPath)

	content, err := os.ReadFile(outPath)
	test.That(t, err, test.ShouldBeNil)
	lines := nonEmptyLines(string(content))
	test.That(t, lines[0], test.ShouldEqual, "north,east,alt")
	test.That(t, len(lines)-1, test.ShouldBeLessThanOrEqualTo, 20)
}

func TestCheckCommand(t *testing.T) {
	path := writeTestMap(t)
	out, err := runApp(t, "--map", path, "check", "--north", "0", "--east", "0", "--alt", "3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "collision")

	out, err = runApp(t, "--map", path, "check", "--north", "10", "--east", "10", "--alt", "3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "free")

	// home sits inside the first obstacle's footprint
	out, err = runApp(t, "--map", path, "check", "--lat", "47.397742", "--lon", "8.545594", "--alt", "3")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "collision")

	_, err = runApp(t, "--map", path, "check", "--lat", "47.4", "--alt", "3")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--lat and --lon")
}

func TestMissingMapFile(t *testing.T) {
	_, err := runApp(t, "--map", filepath.Join(t.TempDir(), "nope.csv"), "info")
	test.That(t, err, test.ShouldNotBeNil)
}
