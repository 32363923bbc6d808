// Package mmfile maps hive files into memory where the platform allows it.
package mmfile
