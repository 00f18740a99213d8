// Command quack-metrics-gen scans pkg/metrics/stats.go for quackm struct
// tags and emits pkg/metrics/generated_collectors.go: one Prometheus
// descriptor and const-metric supplier per tagged field. It is a
// go:generate-style tool, not part of the runtime import graph, mirroring
// cmd/prom-metrics-gen's tcpi-tag scanner re-pointed at the quACK metrics
// payload instead of TCPInfo.
package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log"
	"os"
	"reflect"
	"strings"
	"text/template"
)

const (
	inputPath  = "pkg/metrics/stats.go"
	outputPath = "pkg/metrics/generated_collectors.go"
)

// Metric describes one generated descriptor/supplier pair.
type Metric struct {
	Name      string
	FieldName string
	Help      string
	Type      string // "Gauge" or "Counter"
}

func main() {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, inputPath, nil, parser.ParseComments)
	if err != nil {
		log.Fatal(err)
	}

	var metrics []Metric
	ast.Inspect(node, func(n ast.Node) bool {
		s, ok := n.(*ast.StructType)
		if !ok {
			return true
		}

		for _, f := range s.Fields.List {
			if f.Tag == nil {
				continue
			}
			tag := reflect.StructTag(strings.Trim(f.Tag.Value, "`"))
			quackmTag, ok := tag.Lookup("quackm")
			if !ok {
				continue
			}

			var metric Metric
			metric.FieldName = f.Names[0].Name

			tagString := quackmTag
			for tagString != "" {
				i := strings.Index(tagString, "=")
				if i == -1 {
					log.Printf("malformed tag (missing =): %s [%s]", tagString, metric.FieldName)
					break
				}
				key := tagString[:i]
				tagString = tagString[i+1:]

				var value string
				if strings.HasPrefix(tagString, "'") {
					tagString = tagString[1:]
					j := strings.Index(tagString, "'")
					if j == -1 {
						log.Printf("malformed tag (missing '): %s [%s]", tagString, metric.FieldName)
						break
					}
					value = tagString[:j]
					tagString = tagString[j+1:]
					if strings.HasPrefix(tagString, ",") {
						tagString = tagString[1:]
					}
				} else {
					j := strings.Index(tagString, ",")
					if j == -1 {
						value = tagString
						tagString = ""
					} else {
						value = tagString[:j]
						tagString = tagString[j+1:]
					}
				}

				switch key {
				case "name":
					metric.Name = value
				case "prom_type":
					switch value {
					case "gauge":
						metric.Type = "Gauge"
					case "counter":
						metric.Type = "Counter"
					default:
						log.Fatalf("unknown prom_type %q for field %s", value, metric.FieldName)
					}
				case "prom_help":
					metric.Help = value
				}
			}
			metrics = append(metrics, metric)
		}
		return false
	})

	if len(metrics) == 0 {
		log.Fatalf("no quackm-tagged fields found in %s", inputPath)
	}

	t, err := template.ParseFiles("cmd/quack-metrics-gen/template.tmpl")
	if err != nil {
		log.Fatal(err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Metrics []Metric }{Metrics: metrics}); err != nil {
		log.Fatal(err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Generated %s\n", outputPath)
}
