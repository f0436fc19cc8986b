/*

Process of compilation

Program Text ->
	scan ->
Token Stream (scan) ->
	parse ->
Abstract Syntax Tree (ast) ->
	exec ->
Program Output

Abstract Syntax Tree (ast) ->
	compile ->
Assembly Text (asm) ->
	assemble ->
Instructions (mips) ->
	simulate ->
Program Output

Both paths print the same output for programs without procedure calls.

*/
package compiler
