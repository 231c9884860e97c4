package pom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/depscout/depscout/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pom.xml", `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0">
  <parent>
    <groupId>com.example</groupId>
    <artifactId>parent</artifactId>
    <version>2.0</version>
    <relativePath>../parent</relativePath>
  </parent>
  <artifactId>my-app</artifactId>
  <packaging>war</packaging>

  <properties>
    <spring.version>5.3.0</spring.version>
    <java.version>  17  </java.version>
  </properties>

  <modules>
    <module>core</module>
    <module>web</module>
  </modules>

  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>io.platform</groupId>
        <artifactId>platform-bom</artifactId>
        <version>1.4.0</version>
        <type>pom</type>
        <scope>import</scope>
      </dependency>
      <dependency>
        <groupId>com.google.guava</groupId>
        <artifactId>guava</artifactId>
        <version>31.0-jre</version>
      </dependency>
    </dependencies>
  </dependencyManagement>

  <dependencies>
    <dependency>
      <groupId>org.springframework</groupId>
      <artifactId>spring-core</artifactId>
      <version>${spring.version}</version>
    </dependency>
  </dependencies>

  <build>
    <plugins>
      <plugin>
        <artifactId>maven-jar-plugin</artifactId>
        <version>3.1.1</version>
      </plugin>
      <plugin>
        <groupId>org.codehaus.mojo</groupId>
        <artifactId>build-helper-maven-plugin</artifactId>
        <dependencies>
          <dependency>
            <groupId>org.ow2.asm</groupId>
            <artifactId>asm</artifactId>
            <version>9.2</version>
          </dependency>
        </dependencies>
      </plugin>
    </plugins>
    <pluginManagement>
      <plugins>
        <plugin>
          <artifactId>maven-surefire-plugin</artifactId>
          <version>2.22.2</version>
        </plugin>
      </plugins>
    </pluginManagement>
  </build>
</project>`)

	desc, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if desc.ArtifactID != "my-app" || desc.Packaging != "war" {
		t.Errorf("identity = %s/%s, want my-app/war", desc.ArtifactID, desc.Packaging)
	}
	if desc.GroupID != "" || desc.Version != "" {
		t.Errorf("groupId/version = %q/%q, want empty (inherited)", desc.GroupID, desc.Version)
	}
	if desc.Parent == nil || desc.Parent.Version != "2.0" || desc.Parent.RelativePath != "../parent" {
		t.Errorf("parent = %+v, want version 2.0 with relativePath", desc.Parent)
	}

	if got := desc.Properties["spring.version"]; got != "5.3.0" {
		t.Errorf("property spring.version = %q, want 5.3.0", got)
	}
	if got := desc.Properties["java.version"]; got != "17" {
		t.Errorf("property java.version = %q, want trimmed 17", got)
	}

	if len(desc.Modules) != 2 || desc.Modules[0] != "core" {
		t.Errorf("modules = %v, want [core web]", desc.Modules)
	}

	if len(desc.DependencyManagement) != 2 {
		t.Fatalf("dependencyManagement count = %d, want 2", len(desc.DependencyManagement))
	}
	if !desc.DependencyManagement[0].IsBOMImport() {
		t.Error("platform-bom entry not recognized as BOM import")
	}
	if desc.DependencyManagement[1].IsBOMImport() {
		t.Error("guava entry wrongly recognized as BOM import")
	}

	if len(desc.Dependencies) != 1 || desc.Dependencies[0].Version != "${spring.version}" {
		t.Errorf("dependencies = %+v, want raw placeholder version", desc.Dependencies)
	}

	if len(desc.Plugins) != 2 {
		t.Fatalf("plugins count = %d, want 2", len(desc.Plugins))
	}
	if got := desc.Plugins[0].GroupID; got != DefaultPluginGroup {
		t.Errorf("plugin groupId = %q, want defaulted %q", got, DefaultPluginGroup)
	}
	if got := desc.Plugins[1].GroupID; got != "org.codehaus.mojo" {
		t.Errorf("plugin groupId = %q, want declared org.codehaus.mojo", got)
	}
	if len(desc.Plugins[1].Dependencies) != 1 || desc.Plugins[1].Dependencies[0].ArtifactID != "asm" {
		t.Errorf("plugin dependencies = %+v, want asm", desc.Plugins[1].Dependencies)
	}

	if len(desc.ManagedPlugins) != 1 || desc.ManagedPlugins[0].GroupID != DefaultPluginGroup {
		t.Errorf("managed plugins = %+v, want defaulted surefire entry", desc.ManagedPlugins)
	}
}

func TestRead_Missing(t *testing.T) {
	desc, err := Read(filepath.Join(t.TempDir(), "nope.pom"))
	if desc != nil {
		t.Errorf("descriptor = %+v, want nil", desc)
	}
	if !errors.Is(err, errors.ErrCodeDescriptorNotFound) {
		t.Errorf("error = %v, want DESCRIPTOR_NOT_FOUND", err)
	}
}

func TestRead_MalformedSalvagesIdentity(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pom", `<?xml version="1.0"?>
<project>
  <groupId>com.example</groupId>
  <artifactId>broken</artifactId>
  <version>1.0</version>
  <dependencies>
    <dependency>
      <groupId>unclosed`)

	desc, err := Read(path)
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Fatalf("error = %v, want PARSE_ERROR", err)
	}
	if desc == nil {
		t.Fatal("expected partial descriptor alongside the parse error")
	}
	if desc.GroupID != "com.example" || desc.ArtifactID != "broken" || desc.Version != "1.0" {
		t.Errorf("salvaged identity = %s:%s:%s, want com.example:broken:1.0",
			desc.GroupID, desc.ArtifactID, desc.Version)
	}
}

func TestRead_EmptyProperties(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pom.xml", `<project>
  <groupId>g</groupId>
  <artifactId>a</artifactId>
  <version>1</version>
</project>`)

	desc, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if desc.Properties == nil {
		t.Error("Properties map is nil, want empty map")
	}
}
