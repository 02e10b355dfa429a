/*
Package mapper loads statement definitions and assembles templated ones.

A schema template's definition is shared by every concrete access type that
instantiates it. For a concrete type such as org.example.MavenAssetDAO the
assembler loads /org/example/AssetDAO.xml, replaces ${namespace} and the
template placeholder, then appends the elements declared in
/org/example/MavenAssetDAO.xml if that source exists.

The merge works on parsed XML trees, so text that merely resembles markup in
the template is never touched.
*/
package mapper
